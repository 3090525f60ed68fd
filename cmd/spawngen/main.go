// spawngen writes spawn list YAML for load testing the job pipeline.
//
// Usage:
//
//	go run ./cmd/spawngen <command> [flags]
//
// Commands: scale, bench
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/l1jgo/ecsjobs/internal/data"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	cmd := os.Args[1]
	if cmd == "-h" || cmd == "--help" || cmd == "help" {
		printUsage()
		return
	}

	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	in := fs.String("in", filepath.Join("data", "yaml", "spawn_list.yaml"), "spawn list to scale")
	out := fs.String("out", filepath.Join("data", "yaml", "spawn_list_bench.yaml"), "YAML output file")
	factor := fs.Float64("factor", 10, "count multiplier for scale")
	groups := fs.Int("groups", 8, "number of groups for bench")
	count := fs.Int("count", 10000, "entities per group for bench")
	seed := fs.Uint64("seed", 1, "spawn seed for bench")
	_ = fs.Parse(os.Args[2:])

	var (
		list *data.SpawnList
		err  error
	)
	switch cmd {
	case "scale":
		list, err = data.LoadSpawnList(*in)
		if err == nil {
			scaleList(list, *factor)
		}
	case "bench":
		list = benchList(*groups, *count, *seed)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}

	comment := fmt.Sprintf("# Generated by spawngen %s: %d groups, %d entities.", cmd, len(list.Groups), list.Total())
	if err := writeYAML(*out, list, comment); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s (%d entities)\n", *out, list.Total())
}

// scaleList multiplies every group's count by factor, rounding to nearest.
func scaleList(l *data.SpawnList, factor float64) {
	for i := range l.Groups {
		l.Groups[i].Count = int(math.Round(float64(l.Groups[i].Count) * factor))
	}
}

// benchList builds groups that exercise every job: all of them move, bounce
// inside a box, regenerate and expire at staggered times.
func benchList(groups, count int, seed uint64) *data.SpawnList {
	l := &data.SpawnList{Seed: seed}
	for g := 0; g < groups; g++ {
		half := float32(100 * (g + 1))
		l.Groups = append(l.Groups, data.SpawnGroup{
			Name:     fmt.Sprintf("bench_%02d", g),
			Count:    count,
			Spread:   half,
			Jitter:   50,
			HP:       100,
			Regen:    2,
			Lifetime: float32(5 * (g + 1)),
			Bounds:   &data.Box{Min: data.Vec2{X: -half, Y: -half}, Max: data.Vec2{X: half, Y: half}},
			BumpDmg:  1,
		})
	}
	return l
}

// ---------------------------------------------------------------------------
// YAML writer
// ---------------------------------------------------------------------------

func writeYAML(path string, v any, comment string) error {
	out, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if comment != "" {
		fmt.Fprintln(f, comment)
		fmt.Fprintln(f)
	}
	_, err = f.Write(out)
	return err
}

func printUsage() {
	fmt.Println("Usage: spawngen <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  scale     Multiply every group count of -in by -factor")
	fmt.Println("  bench     Generate -groups groups of -count bouncing, expiring entities")
}
