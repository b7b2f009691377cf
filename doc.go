/*
Package depthview is a live viewer for stereo depth cameras. It opens a camera session, pulls the
depth visualization and the left color view on every frame, maps the depth through the plasma palette
and shows the three images in the "normal", "depth" and "color_map" windows.

The package provides a command line interface. To check the supported flags type:

	$ depthview --help

The viewer can also be driven from code, with any camera.Session and Display:

	package main

	import (
		"context"
		"fmt"

		"github.com/esimov/depthview"
		"github.com/esimov/depthview/camera/sim"
	)

	func main() {
		near, far := depthview.ClipRange(nil)
		v := &depthview.Viewer{
			Session: sim.New(sim.Options{}),
			Display: depthview.NewHighGUI(),
			Near:    near,
			Far:     far,
		}

		if err := v.Run(context.Background()); err != nil {
			fmt.Printf("Error running the viewer: %s", err.Error())
		}
	}

The capture buffers are exposed to OpenCV through the borrowed views of the cvmat package, so the
pixels written by the camera are never copied before the color conversion.
*/
package depthview
