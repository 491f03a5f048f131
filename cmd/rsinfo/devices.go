package main

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/devblok/rendersys/device"
)

func newDevicesCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List the physical devices the driver reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.configuration()
			if err != nil {
				return err
			}
			b, err := opts.openBackend(cfg)
			if err != nil {
				return err
			}

			app := cfg.AppInfo()
			inst, err := b.Driver().CreateInstance(device.InstanceCreateInfo{
				ApplicationName:    app.Name,
				ApplicationVersion: app.Version,
				EngineName:         app.EngineName,
				EngineVersion:      app.EngineVersion,
				APIVersion:         app.APIVersion,
			})
			if err != nil {
				return errors.Wrap(err, "create instance")
			}
			defer inst.Destroy()

			infos, err := device.PhysicalDevicesInfo(inst)
			if err != nil {
				return errors.Wrap(err, "enumerate devices")
			}

			p := opts.printer(cmd)
			if p.json {
				return p.JSON(infos)
			}
			for i, info := range infos {
				if info.Invalid {
					p.Title(fmt.Sprintf("%s device %d (unreadable)", b.Driver().Name(), i))
					continue
				}
				p.Title(info.Name)
				p.Field("type", info.Type)
				p.Field("vendor id", info.VendorID)
				p.Field("device id", info.ID)
				p.Field("memory", info.Memory)
				p.Field("extensions", len(info.Extensions))
				p.Field("layers", len(info.Layers))
			}
			return nil
		},
	}
}
