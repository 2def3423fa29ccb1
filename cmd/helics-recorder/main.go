// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Command helics-recorder subscribes to a fixed set of interfaces and
// records every value it observes, the Go counterpart of
// original_source's src/helics/apps/recorderMain.cpp
// (helics::apps::Recorder).
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/helics/core/cmd/internal/appcore"
	"github.com/helics/core/fedid"
	"github.com/helics/core/federate"
	"github.com/helics/core/values"
)

type record struct {
	Time  fedid.Time
	Key   string
	Value values.Value
}

func loadSubscriptions(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var keys []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		key := strings.TrimSpace(sc.Text())
		if key == "" || strings.HasPrefix(key, "#") {
			continue
		}
		keys = append(keys, key)
	}
	return keys, sc.Err()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "helics-recorder:", err)
		os.Exit(1)
	}
}

func run() error {
	fs := flag.NewFlagSet("helics-recorder", flag.ExitOnError)
	f := appcore.Bind(fs, "recorder")
	subsFile := fs.String("input", "", "path to a file listing one subscription key per line")
	output := fs.String("output", "", "path to write the recorded (time,key,value) CSV; stdout if empty")
	period := fs.Float64("period", 1.0, "seconds between recorder time steps")
	fs.Parse(os.Args[1:])

	if *subsFile == "" {
		return fmt.Errorf("-input is required")
	}
	keys, err := loadSubscriptions(*subsFile)
	if err != nil {
		return err
	}
	if f.StopTime <= 0 {
		return fmt.Errorf("-stop must be > 0")
	}

	fed, err := appcore.Join(f)
	if err != nil {
		return err
	}
	defer fed.Close()

	handles := make(map[string]fedid.InterfaceHandle, len(keys))
	for _, key := range keys {
		h, err := fed.Registry.RegisterInput(key, "double", "")
		if err != nil {
			return fmt.Errorf("register input %q: %w", key, err)
		}
		handles[key] = h
	}

	if err := fed.State.EnterInitializingMode(); err != nil {
		return fmt.Errorf("enter initializing mode: %w", err)
	}
	if _, err := fed.State.EnterExecutingMode(federate.NoIterations); err != nil {
		return fmt.Errorf("enter executing mode: %w", err)
	}

	var records []record
	for t := fedid.Time(0); t <= fedid.Time(f.StopTime); t += fedid.Time(*period) {
		grant, err := fed.State.RequestTime(t, federate.NoIterations)
		if err != nil {
			return fmt.Errorf("request time %s: %w", t, err)
		}
		for key, h := range handles {
			input, ok := fed.Registry.Input(h)
			if !ok {
				continue
			}
			for _, src := range input.Sources() {
				raw, ok := input.LastValue(src)
				if !ok {
					continue
				}
				decoded, err := values.Decode(raw)
				if err != nil {
					continue
				}
				records = append(records, record{Time: grant.Time, Key: key, Value: decoded})
			}
		}
	}

	out := os.Stdout
	if *output != "" {
		of, err := os.Create(*output)
		if err != nil {
			return err
		}
		defer of.Close()
		out = of
	}
	w := bufio.NewWriter(out)
	defer w.Flush()
	fmt.Fprintln(w, "time,key,value")
	for _, r := range records {
		fmt.Fprintf(w, "%s,%s,%s\n", r.Time, r.Key, r.Value)
	}
	fmt.Fprintf(os.Stderr, "helics-recorder: wrote %d records\n", len(records))
	return nil
}
