package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/gogpu/pixelmap"
	"github.com/gogpu/pixelmap/parcel"
)

func runRoundtrip(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("roundtrip", flag.ContinueOnError)
	var c commonFlags
	c.register(fs)
	shared := fs.Bool("shared", false, "move the pixels to shared memory before sending")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("roundtrip: missing input file\nUsage: pixtool roundtrip [options] <input>")
	}

	pm, err := c.load(fs.Arg(0))
	if err != nil {
		return err
	}
	defer pm.Release()
	if *shared {
		if err := toShared(pm); err != nil {
			return err
		}
	}
	describe(w, "sent    ", pm)

	out := parcel.New()
	defer out.Close()
	if err := pm.Marshal(out); err != nil {
		return err
	}
	in, err := exchange(out)
	if err != nil {
		return err
	}
	defer in.Close()

	got, err := pixelmap.Unmarshal(in)
	if err != nil {
		return err
	}
	defer got.Release()
	describe(w, "received", got)

	if got.ImageInfo() != pm.ImageInfo() || !bytes.Equal(got.Pixels(), pm.Pixels()) {
		return errors.New("roundtrip: received map differs from the one sent")
	}
	fmt.Fprintf(w, "ok: %d descriptors, %d bytes inline\n", len(out.FDs()), out.Len())
	return nil
}

// toShared copies the pixels of pm into a shared-memory segment.
func toShared(pm *pixelmap.PixelMap) error {
	s, err := pixelmap.NewSharedStorage("pixtool", pm.ByteCount())
	if err != nil {
		return err
	}
	copy(s.Bytes(), pm.Pixels())
	return pm.SetStorage(s)
}
