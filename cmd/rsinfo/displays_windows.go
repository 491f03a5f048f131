package main

import _ "github.com/devblok/rendersys/display/win32"
