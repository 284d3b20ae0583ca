package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/nholt/go-tzdef/tzdef"
)

func main() {
	if err := run(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()
	args := flag.Args()
	if len(args) != 2 {
		return fmt.Errorf("Usage: tzdefdiff <definition file A> <definition file B>")
	}

	a, err := decodeFile(args[0])
	if err != nil {
		return err
	}
	b, err := decodeFile(args[1])
	if err != nil {
		return err
	}

	opts := cmpopts.IgnoreUnexported(tzdef.Definition{}, tzdef.TransitionsGroup{})
	if diff := cmp.Diff(a, b, opts); diff != "" {
		fmt.Println("definitions are different: -A +B")
		fmt.Println(diff)
	} else {
		fmt.Println("definitions are identical")
	}

	return nil
}

func decodeFile(path string) (*tzdef.Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d, err := tzdef.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return d, nil
}
