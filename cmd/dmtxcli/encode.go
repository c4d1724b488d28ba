package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/spf13/cobra"

	"github.com/zmoth/libdmtx/config"
	"github.com/zmoth/libdmtx/datamatrix"
)

var (
	encodeOut    string
	encodeScheme string
	encodeSize   int
	encodeMargin int
	encodeModule int
	encodeFNC1   bool
)

var encodeCmd = &cobra.Command{
	Use:   "encode [message]",
	Short: "Encode a message into a Data Matrix PNG",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := cfg.EncodeOptions()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("scheme") {
			opts.Scheme, err = config.ParseScheme(encodeScheme)
			if err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("size-idx") {
			opts.SizeIdxRequest = encodeSize
		}
		if cmd.Flags().Changed("margin") {
			opts.MarginSize = encodeMargin
		}
		if cmd.Flags().Changed("module") {
			opts.ModuleSize = encodeModule
		}
		if cmd.Flags().Changed("fnc1") {
			opts.FNC1 = encodeFNC1
		}

		matrix, err := datamatrix.NewWriter().Encode(args[0], opts)
		if err != nil {
			return fmt.Errorf("encode: %w", err)
		}

		scale := opts.ModuleSize
		if scale < 1 {
			scale = 1
		}
		img := image.NewGray(image.Rect(0, 0, matrix.Width()*scale, matrix.Height()*scale))
		for y := 0; y < matrix.Height(); y++ {
			for x := 0; x < matrix.Width(); x++ {
				c := color.Gray{Y: 255}
				if matrix.Get(x, y) {
					c = color.Gray{Y: 0}
				}
				for dy := 0; dy < scale; dy++ {
					for dx := 0; dx < scale; dx++ {
						img.SetGray(x*scale+dx, y*scale+dy, c)
					}
				}
			}
		}

		f, err := os.Create(encodeOut)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := png.Encode(f, img); err != nil {
			return err
		}
		fmt.Printf("wrote %s (%dx%d modules)\n", encodeOut, matrix.Width(), matrix.Height())
		return nil
	},
}

func init() {
	encodeCmd.Flags().StringVarP(&encodeOut, "out", "o", "dmtx.png", "output PNG path")
	encodeCmd.Flags().StringVar(&encodeScheme, "scheme", "auto", "encodation scheme: auto, ascii, c40, text, x12, edifact, base256")
	encodeCmd.Flags().IntVar(&encodeSize, "size-idx", -1, "symbol size index, -1 for smallest fit")
	encodeCmd.Flags().IntVar(&encodeMargin, "margin", 10, "quiet zone width in modules")
	encodeCmd.Flags().IntVar(&encodeModule, "module", 5, "module size in pixels")
	encodeCmd.Flags().BoolVar(&encodeFNC1, "fnc1", false, "enable GS1 FNC1 sequences")
}
