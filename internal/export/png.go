package export

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"datalens/internal/api"
)

// PNGExporter renders the report's chart tiles stacked vertically into one
// image. Text and KPI tiles have no raster form and are left to the PDF
// exporter.
type PNGExporter struct{}

func (e *PNGExporter) Export(report *api.Report, w io.Writer) error {
	var images []image.Image
	for _, t := range report.Tiles {
		if t.Type != api.TileChart {
			continue
		}
		sc, err := tileChart(t)
		if err != nil {
			continue
		}
		img, err := renderChart(sc)
		if err != nil {
			return err
		}
		images = append(images, img)
	}
	if len(images) == 0 {
		return ErrNothingToRender
	}

	return png.Encode(w, stackVertically(images))
}

func (e *PNGExporter) Extension() string {
	return "png"
}

func stackVertically(images []image.Image) image.Image {
	width, height := 0, 0
	for _, img := range images {
		b := img.Bounds()
		if b.Dx() > width {
			width = b.Dx()
		}
		height += b.Dy()
	}

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	y := 0
	for _, img := range images {
		b := img.Bounds()
		dst := image.Rect(0, y, b.Dx(), y+b.Dy())
		draw.Draw(canvas, dst, img, b.Min, draw.Over)
		y += b.Dy()
	}
	return canvas
}
