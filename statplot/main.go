package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"

	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/decibelcooper/infogen"
	"github.com/decibelcooper/infogen/stats"
)

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: `+os.Args[0]+` [options] <stats-yoda-files>...

options:
`,
	)
	flag.PrintDefaults()
}

var (
	title  = flag.String("title", "TRD info generator statistics", "plot title")
	prefix = flag.String("prefix", "stats", "output file prefix")
	hist   = flag.Bool("hist", false, "draw the histograms as steps instead of bars")
)

var palette = []color.Color{
	color.RGBA{A: 255},
	color.RGBA{R: 200, A: 255},
	color.RGBA{G: 160, A: 255},
	color.RGBA{B: 255, A: 255},
}

func main() {
	flag.Usage = printUsage
	flag.Parse()
	if flag.NArg() < 1 {
		printUsage()
		log.Fatal("Invalid arguments")
	}

	p, err := plot.New()
	if err != nil {
		log.Fatal(err)
	}
	p.Title.Text = *title
	p.Y.Label.Text = "Entries"
	p.Y.Tick.Marker = infogen.CountTicks{NSuggestedTicks: 5}
	p.NominalX(stats.Labels[:]...)
	p.Legend.Top = true

	width := vg.Points(40 / float64(flag.NArg()))
	for i, filename := range flag.Args() {
		s, err := stats.Load(filename)
		if err != nil {
			log.Fatal(err)
		}
		col := palette[i%len(palette)]

		if *hist {
			h := hplot.NewH1D(s.H1D())
			h.LineStyle.Color = col
			p.Add(h)
			p.Legend.Add(filename, h)
			continue
		}

		bars, err := plotter.NewBarChart(plotter.Values(s.Values()), width)
		if err != nil {
			log.Fatal(err)
		}
		bars.Color = col
		bars.LineStyle.Width = 0
		bars.Offset = width * vg.Length(i-flag.NArg()/2)
		p.Add(bars)
		p.Legend.Add(filename, bars)
	}

	for _, ext := range []string{".pdf", ".png"} {
		if err := p.Save(8*vg.Inch, 4*vg.Inch, *prefix+ext); err != nil {
			log.Fatal(err)
		}
	}
}
