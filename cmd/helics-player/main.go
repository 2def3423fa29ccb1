// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Command helics-player replays a scripted sequence of timestamped
// values onto a federation, the Go counterpart of
// original_source's src/helics/apps/playerMain.cpp (helics::apps::Player).
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/helics/core/cmd/internal/appcore"
	"github.com/helics/core/fedid"
	"github.com/helics/core/federate"
	"github.com/helics/core/values"
)

// entry is one line of a player script: "<time> <key> <value>",
// seconds and a float64 payload (original_source's Player points file
// format, trimmed to the double-valued case).
type entry struct {
	Time  fedid.Time
	Key   string
	Value float64
}

func parseScript(path string) ([]entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []entry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, fmt.Errorf("helics-player: malformed line %q: want \"<time> <key> <value>\"", line)
		}
		t, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("helics-player: bad time %q: %w", fields[0], err)
		}
		v, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("helics-player: bad value %q: %w", fields[2], err)
		}
		out = append(out, entry{Time: fedid.Time(t), Key: fields[1], Value: v})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out, nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "helics-player:", err)
		os.Exit(1)
	}
}

func run() error {
	fs := flag.NewFlagSet("helics-player", flag.ExitOnError)
	f := appcore.Bind(fs, "player")
	input := fs.String("input", "", "path to a player script (\"<time> <key> <value>\" per line)")
	fs.Parse(os.Args[1:])

	if *input == "" {
		return fmt.Errorf("-input is required")
	}
	script, err := parseScript(*input)
	if err != nil {
		return err
	}

	fed, err := appcore.Join(f)
	if err != nil {
		return err
	}
	defer fed.Close()

	handles := make(map[string]fedid.InterfaceHandle)
	for _, e := range script {
		if _, ok := handles[e.Key]; ok {
			continue
		}
		h, err := fed.Registry.RegisterPublication(e.Key, "double", "")
		if err != nil {
			return fmt.Errorf("register publication %q: %w", e.Key, err)
		}
		handles[e.Key] = h
	}

	if err := fed.State.EnterInitializingMode(); err != nil {
		return fmt.Errorf("enter initializing mode: %w", err)
	}
	if _, err := fed.State.EnterExecutingMode(federate.NoIterations); err != nil {
		return fmt.Errorf("enter executing mode: %w", err)
	}

	fmt.Printf("helics-player: %q replaying %d points\n", f.Name, len(script))
	for _, e := range script {
		grant, err := fed.State.RequestTime(e.Time, federate.NoIterations)
		if err != nil {
			return fmt.Errorf("request time %s: %w", e.Time, err)
		}
		raw, err := values.Encode(values.NewDouble(e.Value))
		if err != nil {
			return fmt.Errorf("encode %q=%v: %w", e.Key, e.Value, err)
		}
		if err := fed.State.Publish(handles[e.Key], raw); err != nil {
			return fmt.Errorf("publish %q: %w", e.Key, err)
		}
		fmt.Printf("  t=%s %s=%v (granted %s)\n", e.Time, e.Key, e.Value, grant.Time)
	}

	if f.StopTime > float64(script[len(script)-1].Time) {
		if _, err := fed.State.RequestTime(fedid.Time(f.StopTime), federate.NoIterations); err != nil {
			return fmt.Errorf("request final stop time: %w", err)
		}
	}

	fmt.Println("helics-player: done")
	return nil
}
