package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nholt/go-tzdef/tzdef"
)

var (
	formatFlag = flag.String("format", "text", "Output format: text or yaml")
	yearFlag   = flag.Int("year", time.Now().Year(), "Year to resolve recurring transitions for")
)

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) != 1 {
		fmt.Println("Usage: tzdefinspect [-format text|yaml] [-year YYYY] <definition file>")
		os.Exit(1)
	}

	f, err := os.Open(args[0])
	if err != nil {
		fmt.Println("opening file:", err)
		os.Exit(1)
	}
	defer f.Close()

	d, err := tzdef.Decode(f)
	if err != nil {
		fmt.Println("decoding:", err)
		os.Exit(1)
	}
	if err := d.Validate(); err != nil {
		fmt.Println("validating:", err)
		os.Exit(1)
	}

	switch *formatFlag {
	case "yaml":
		out, err := yaml.Marshal(d)
		if err != nil {
			fmt.Println("marshaling:", err)
			os.Exit(1)
		}
		os.Stdout.Write(out)
	case "text":
		if err := printDefinition(d, *yearFlag); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	default:
		fmt.Println("unknown format:", *formatFlag)
		os.Exit(1)
	}
}

func printDefinition(d *tzdef.Definition, year int) error {
	fmt.Println("Definition")
	fmt.Println("  Id   =", d.ID)
	fmt.Println("  Name =", d.Name)
	fmt.Println()

	fmt.Println("Periods")
	for _, p := range d.Periods {
		fmt.Printf("  %s (%s) bias %v\n", p.ID, p.Name, p.Bias)
	}
	fmt.Println()

	for _, g := range d.Groups {
		if err := printGroup(g, year); err != nil {
			return err
		}
	}
	return nil
}

func printGroup(g *tzdef.TransitionsGroup, year int) error {
	fmt.Println("TransitionsGroup", g.ID)

	params, err := g.CreationParams()
	if err != nil {
		return fmt.Errorf("group %s: %w", g.ID, err)
	}
	fmt.Println("  BaseOffsetToUTC =", params.BaseOffsetToUTC)
	fmt.Println("  StandardName    =", params.StandardName)
	if g.SupportsDaylight() {
		fmt.Println("  DaylightName    =", params.DaylightName)
		delta, err := g.DaylightDelta()
		if err != nil {
			return fmt.Errorf("group %s: %w", g.ID, err)
		}
		fmt.Println("  DaylightDelta   =", delta)

		occs, err := g.Occurrences(year)
		if err != nil {
			return fmt.Errorf("group %s: %w", g.ID, err)
		}
		for _, o := range occs {
			at := time.Unix(o.At, 0).UTC()
			fmt.Printf("  %s -> %s (%s)\n", at.Format(time.RFC3339), o.To.ID, o.To.Name)
		}
	}
	fmt.Println()
	return nil
}
