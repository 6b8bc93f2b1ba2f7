// chesscore-perft is a move generation verification tool. It runs perft node
// counts on a position, optionally split per root move, and can record the
// position in the local position store.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"sort"
	"time"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/store"
)

var (
	fen        = flag.String("fen", board.StartFEN, "position to analyze")
	depth      = flag.Int("depth", 5, "perft depth")
	divide     = flag.Bool("divide", false, "print per-root-move node counts")
	chess960   = flag.Bool("chess960", false, "use chess960 castling rules")
	saveDir    = flag.String("save", "", "save the position to the store at this directory ('default' for the platform data dir)")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
)

func main() {
	flag.Parse()

	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}

	pos := &board.Position{}
	if err := pos.Set(*fen, *chess960, nil); err != nil {
		log.Fatalf("invalid position: %v", err)
	}
	pos.Reserve(*depth)

	fmt.Print(pos)

	if *saveDir != "" {
		savePosition(pos)
	}

	start := time.Now()
	var nodes uint64

	if *divide {
		counts := pos.PerftDivide(*depth)

		moves := make([]string, 0, len(counts))
		for m := range counts {
			moves = append(moves, m)
		}
		sort.Strings(moves)
		for _, m := range moves {
			fmt.Printf("%s: %d\n", m, counts[m])
			nodes += counts[m]
		}
	} else {
		nodes = pos.Perft(*depth)
	}

	elapsed := time.Since(start)
	nps := float64(nodes) / elapsed.Seconds()
	fmt.Printf("\nperft(%d) = %d in %v (%.0f nodes/s)\n", *depth, nodes, elapsed.Round(time.Millisecond), nps)
}

func savePosition(pos *board.Position) {
	dir := *saveDir
	if dir == "default" {
		dir = ""
	}
	s, err := store.Open(dir)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer s.Close()

	hash, err := s.Save(pos)
	if err != nil {
		log.Fatalf("save position: %v", err)
	}
	fmt.Printf("saved as %016x\n", hash)
}
