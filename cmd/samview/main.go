// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command samview prints, converts, and indexes BAM alignment files.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"v.io/x/lib/vlog"

	"github.com/nextbase/hts/bai"
	"github.com/nextbase/hts/bam"
	"github.com/nextbase/hts/sam"
)

func main() {
	var (
		region  = flag.String("region", "", "restrict output to reads overlapping region (name:begin-end)")
		index   = flag.Bool("index", false, "write in.bam.bai instead of printing records")
		headers = flag.Bool("H", false, "include the textual header in record output")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: samview [flags] in.bam")
		os.Exit(2)
	}
	path := flag.Arg(0)

	if *index {
		if err := writeIndex(path); err != nil {
			vlog.Errorf("samview: %v", err)
			os.Exit(1)
		}
		return
	}

	if err := view(path, *region, *headers); err != nil {
		vlog.Errorf("samview: %v", err)
		os.Exit(1)
	}
}

func view(path, region string, showHeader bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r, err := bam.NewReader(f, 0)
	if err != nil {
		return err
	}
	defer r.Close()

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	if showHeader {
		out.Write(r.Header().Text())
	}

	if region == "" {
		for {
			rec, err := r.Read()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}
			if err := printRecord(out, rec); err != nil {
				return err
			}
		}
	}

	idx, err := loadIndex(path)
	if err != nil {
		return err
	}
	ir := bam.NewIndexReader(r, idx)
	it, err := ir.Query(region)
	if err != nil {
		return err
	}
	for it.Next() {
		if err := printRecord(out, it.Record()); err != nil {
			return err
		}
	}
	return it.Error()
}

func printRecord(w io.Writer, rec *sam.Record) error {
	b, err := rec.MarshalSAM(sam.FlagString)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", b)
	return err
}

func writeIndex(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r, err := bam.NewReader(f, 0)
	if err != nil {
		return err
	}
	defer r.Close()

	out, err := os.Create(path + ".bai")
	if err != nil {
		return err
	}
	defer out.Close()

	return bam.WriteIndex(out, r)
}

func loadIndex(path string) (*bai.Index, error) {
	f, err := os.Open(path + ".bai")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return bai.Load(f)
}
