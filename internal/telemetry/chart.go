package telemetry

// ChartTitle is the title shown above the sensor chart.
const ChartTitle = "Sensor Data Over Time"

// LabelTimeFormat is the layout used for chart x-axis labels.
const LabelTimeFormat = "15:04:05"

// ChartData is a line-chart payload whose Labels and Datasets can be
// assigned directly to a Chart.js config.
type ChartData struct {
	Title    string         `json:"title"`
	Labels   []string       `json:"labels"`
	Datasets []ChartDataset `json:"datasets"`
}

// ChartDataset is one line of the chart.
type ChartDataset struct {
	Key         string    `json:"key"`
	Label       string    `json:"label"`
	BorderColor string    `json:"borderColor"`
	Fill        bool      `json:"fill"`
	Data        []float64 `json:"data"`
}

// Chart renders the snapshot as chart data, one dataset per channel in
// channel order. Labels use the local wall-clock time of each sample.
func (s Snapshot) Chart() ChartData {
	labels := make([]string, len(s.Timestamps))
	for i, ts := range s.Timestamps {
		labels[i] = ts.Local().Format(LabelTimeFormat)
	}

	datasets := make([]ChartDataset, 0, len(s.Channels))
	for _, ch := range s.Channels {
		data := s.Series[ch.Key]
		if data == nil {
			data = []float64{}
		}
		datasets = append(datasets, ChartDataset{
			Key:         ch.Key,
			Label:       ch.Label,
			BorderColor: ch.Color,
			Data:        data,
		})
	}

	return ChartData{
		Title:    ChartTitle,
		Labels:   labels,
		Datasets: datasets,
	}
}
