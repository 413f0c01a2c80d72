// schdump prints the raw record sequence of a schematic document, one
// property list per line, for poking at files the renderer mishandles.
//
//	schdump [-stream name] file.SchDoc
package main

import (
	"fmt"
	"io"
	"os"

	"schlib/cfb"
	"schlib/filters"
	"schlib/recovery"
	"schlib/scanner"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	stream := ""
	var paths []string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-stream", "--stream":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "-stream needs a value")
				return 2
			}
			i++
			stream = args[i]
		default:
			paths = append(paths, args[i])
		}
	}
	if len(paths) != 1 {
		fmt.Fprintln(os.Stderr, "usage: schdump [-stream name] file.SchDoc")
		return 2
	}

	f, err := os.Open(paths[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer f.Close()

	container, err := cfb.Open(f)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	streams := container.Streams()
	if stream != "" {
		streams = []string{stream}
	}
	for _, name := range streams {
		data, err := container.Read(name)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Fprintf(out, "== %s (%d bytes)\n", name, len(data))
		dumpStream(out, name, data)
	}
	return 0
}

func dumpStream(out io.Writer, name string, data []byte) {
	framer := scanner.New(data, scanner.Config{
		Stream:   name,
		Recovery: recovery.NewLenientStrategy(),
	})
	for i := 0; ; i++ {
		item, err := framer.Next()
		if err == io.EOF {
			return
		}
		if err != nil {
			fmt.Fprintf(out, "%6d !%v\n", i, err)
			return
		}
		switch item.Type {
		case scanner.ItemEmbeddedFile:
			if inflated, err := filters.Inflate(item.Payload); err == nil {
				fmt.Fprintf(out, "%6d @%-8d <embedded %q, %d bytes (%d compressed)>\n",
					i, item.Pos, item.Name, len(inflated), len(item.Payload))
			} else {
				fmt.Fprintf(out, "%6d @%-8d <embedded %q, %d compressed bytes, undecodable: %v>\n",
					i, item.Pos, item.Name, len(item.Payload), err)
			}
		default:
			fmt.Fprintf(out, "%6d @%-8d %s\n", i, item.Pos, item.Payload)
		}
	}
}
