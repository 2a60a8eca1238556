/*Package featplot produces diagnostic plots for featurization artifacts:
per-channel occupancy bar charts that show how the hashed fragments
distribute over the channel space of a voxel tensor or a flat vector.*/
package featplot

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	feat "github.com/gmolnar/gridfeat"
)

//Stats summarizes how the counts distribute over the channels of one
//artifact. A high Empty fraction at a low total means the channel space
//is wider than the chemistry needs.
type Stats struct {
	Total  float64
	Mean   float64
	StdDev float64
	Max    float64
	Empty  float64 //fraction of channels with zero counts
}

//OccupancyStats computes summary statistics of the per-channel counts.
func OccupancyStats(counts []float64) *Stats {
	if len(counts) == 0 {
		panic("Given empty data")
	}
	ret := new(Stats)
	ret.Total = floats.Sum(counts)
	ret.Mean = stat.Mean(counts, nil)
	ret.StdDev = stat.StdDev(counts, nil)
	ret.Max = floats.Max(counts)
	empty := 0
	for _, v := range counts {
		if v == 0 {
			empty++
		}
	}
	ret.Empty = float64(empty) / float64(len(counts))
	return ret
}

func (S *Stats) String() string {
	return fmt.Sprintf("total:%g mean:%.3f sd:%.3f max:%g empty:%.2f", S.Total, S.Mean, S.StdDev, S.Max, S.Empty)
}

//ChannelOccupancy returns the total count accumulated in each channel of
//the tensor, summed over all voxels.
func ChannelOccupancy(T *feat.Tensor) []float64 {
	if T == nil {
		panic("Given nil tensor")
	}
	ret := make([]float64, T.Channels())
	raw := T.Raw()
	nc := T.Channels()
	for i, v := range raw {
		ret[i%nc] += v
	}
	return ret
}

//OccupancyPlot produces a bar chart, in png format, of the given
//per-channel counts. The extension must be included in plotname.
//Returns an error or nil.
func OccupancyPlot(counts []float64, title, plotname string) error {
	if counts == nil {
		panic("Given nil data")
	}
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = "Channel"
	p.Y.Label.Text = "Count"
	bars, err := plotter.NewBarChart(plotter.Values(counts), vg.Points(8))
	if err != nil {
		return err
	}
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	labels := make([]string, len(counts))
	for i := range labels {
		labels[i] = fmt.Sprintf("%d", i)
	}
	p.NominalX(labels...)
	err = p.Save(20*vg.Centimeter, 10*vg.Centimeter, plotname)
	if err != nil {
		return err
	}
	return nil
}

//TensorOccupancyPlot is a convenience that chains ChannelOccupancy and
//OccupancyPlot for one tensor artifact.
func TensorOccupancyPlot(T *feat.Tensor, title, plotname string) error {
	return OccupancyPlot(ChannelOccupancy(T), title, plotname)
}
