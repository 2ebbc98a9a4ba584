package main

import (
	"flag"
	"fmt"
	"io"
	"log"

	"github.com/entisia/go-noa/internal/noa"
	"github.com/entisia/go-noa/internal/source"
)

func main() {
	path := flag.String("archive", "", "path to NOA archive")
	password := flag.String("password", "", "password for protected entries")
	headLen := flag.Int("head", 16, "payload head bytes to dump per entry")
	maxEntries := flag.Int("n", 20, "max entries to dump payload heads for")
	flag.Parse()
	if *path == "" {
		log.Fatal("-archive required")
	}

	f, err := source.OpenFile(*path)
	if err != nil {
		log.Fatalf("OpenFile: %v", err)
	}
	defer f.Close()

	head := make([]byte, 16)
	n, _ := f.ReadAt(head, 0)
	fmt.Printf("size=%d header=% x\n", f.Size(), head[:n])

	a, err := noa.New(f, noa.Options{Password: *password})
	if err != nil {
		fmt.Printf("parse err: %v\n", err)
		return
	}

	fmt.Printf("entries=%d totalSize=%d hasEncrypted=%v\n", len(a.Entries), a.TotalSize(), a.HasEncrypted)
	for i, e := range a.Entries {
		fmt.Printf("- %q offset=%#x size=%d attr=%#x enc=%#x extra=%d type=%s\n",
			e.Name, e.Offset, e.Size, e.Attribute, e.Encryption, len(e.Extra), e.Type)
		if i >= *maxEntries {
			fmt.Printf("... %d more\n", len(a.Entries)-i-1)
			break
		}
	}

	for i, e := range a.Entries {
		if i >= *maxEntries {
			break
		}
		r, err := a.OpenEntry(e)
		if err != nil {
			fmt.Printf("- %q open err: %v\n", e.Name, err)
			continue
		}
		buf := make([]byte, *headLen)
		n, rerr := io.ReadFull(r, buf)
		if n == 0 && rerr != nil {
			fmt.Printf("- %q read err: %v\n", e.Name, rerr)
			continue
		}
		fmt.Printf("- %q head=% x\n", e.Name, buf[:n])
	}
}
