package main

import (
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nextzen/osmlr2graph"
)

const version = "0.1.0"

var (
	configFile  = flag.String("config", "", "Graph configuration file (JSON) [required]")
	osmlrDir    = flag.String("tile-dir", "", "Location of OSMLR traffic segment tiles [required]")
	dumpFile    = flag.String("dump", "", "Write matched associations as GeoJSON to this file (optional)")
	showVersion = flag.Bool("version", false, "Print the version of this software")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("osmlr2graph %s\n", version)
		return
	}
	if *configFile == "" {
		fmt.Println("You must provide a configuration file.")
		flag.Usage()
		return
	}
	if *osmlrDir == "" {
		fmt.Println("You must provide a tile directory to read OSMLR tiles from.")
		flag.Usage()
		return
	}

	cfg, err := osmlr2graph.LoadConfig(*configFile)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	reader := osmlr2graph.NewGraphReader(cfg.Graph.TileDir)
	associator, err := osmlr2graph.NewAssociator(reader, cfg.Graph.SearchRadiusMeters)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	st := time.Now()
	err = filepath.WalkDir(*osmlrDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".osmlr") {
			return nil
		}
		return associator.AddTile(path)
	})
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	if *dumpFile != "" {
		if err := associator.DumpGeoJSON(*dumpFile); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	}

	if err := associator.Finish(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	fmt.Printf("Done in %v\n", time.Since(st))
}
