package main

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"time"

	"github.com/spf13/cobra"

	dmtx "github.com/zmoth/libdmtx"
	"github.com/zmoth/libdmtx/binarizer"
	"github.com/zmoth/libdmtx/datamatrix"
)

var (
	decodePure      bool
	decodeTryHarder bool
	decodeTimeout   time.Duration
	decodeSizeIdx   int
	decodeScanGap   int
	decodeShrink    int
)

var decodeCmd = &cobra.Command{
	Use:   "decode [image]",
	Short: "Decode a Data Matrix symbol from an image file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		img, _, err := image.Decode(f)
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}

		opts := cfg.DecodeOptions()
		opts.PureBarcode = decodePure
		opts.TryHarder = decodeTryHarder
		if cmd.Flags().Changed("size-idx") {
			opts.SizeIdxExpected = decodeSizeIdx
		}
		if cmd.Flags().Changed("scan-gap") {
			opts.ScanGap = decodeScanGap
		}
		if cmd.Flags().Changed("shrink") {
			opts.Shrink = decodeShrink
		}

		ctx := context.Background()
		timeout := decodeTimeout
		if timeout == 0 && cfg.Decode.Timeout != "" {
			timeout, err = time.ParseDuration(cfg.Decode.Timeout)
			if err != nil {
				return fmt.Errorf("config timeout: %w", err)
			}
		}
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		source := dmtx.NewImageLuminanceSource(img)
		bitmap := dmtx.NewBinaryBitmap(binarizer.NewHybrid(source))

		result, err := datamatrix.NewReader().DecodeContext(ctx, bitmap, opts)
		if err != nil {
			return fmt.Errorf("decode: %w", err)
		}

		fmt.Println(result.Text)
		if corrected, ok := result.Metadata[dmtx.MetadataErrorsCorrected]; ok {
			fmt.Fprintf(os.Stderr, "errors corrected: %v\n", corrected)
		}
		return nil
	},
}

func init() {
	decodeCmd.Flags().BoolVar(&decodePure, "pure", false, "assume a clean, unrotated symbol")
	decodeCmd.Flags().BoolVar(&decodeTryHarder, "try-harder", false, "fall back to pure extraction when detection fails")
	decodeCmd.Flags().DurationVar(&decodeTimeout, "timeout", 0, "give up after this long, e.g. 500ms")
	decodeCmd.Flags().IntVar(&decodeSizeIdx, "size-idx", dmtx.SizeIdxAuto, "expected symbol size index, or -1/-2/-3 for any/square/rect")
	decodeCmd.Flags().IntVar(&decodeScanGap, "scan-gap", 2, "finest scan grid spacing in pixels")
	decodeCmd.Flags().IntVar(&decodeShrink, "shrink", 1, "downsample factor before detection")
}
