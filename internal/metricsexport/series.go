package metricsexport

import (
	"math"
	"sort"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/prometheus/prompb"
)

// BuildSeries flattens gathered families into remote_write series. Counters
// and gauges map to one series each; histograms expand into _bucket, _sum
// and _count series the way the text exposition does.
func BuildSeries(families []*dto.MetricFamily, timestampMs int64) []prompb.TimeSeries {
	series := make([]prompb.TimeSeries, 0, len(families))
	for _, family := range families {
		name := family.GetName()
		for _, m := range family.GetMetric() {
			switch family.GetType() {
			case dto.MetricType_COUNTER:
				if m.GetCounter() != nil {
					series = append(series, sample(name, m.GetLabel(), nil, m.GetCounter().GetValue(), timestampMs))
				}
			case dto.MetricType_GAUGE:
				if m.GetGauge() != nil {
					series = append(series, sample(name, m.GetLabel(), nil, m.GetGauge().GetValue(), timestampMs))
				}
			case dto.MetricType_HISTOGRAM:
				h := m.GetHistogram()
				if h == nil {
					continue
				}
				for _, b := range h.GetBucket() {
					le := prompb.Label{Name: "le", Value: formatBound(b.GetUpperBound())}
					series = append(series, sample(name+"_bucket", m.GetLabel(), &le, float64(b.GetCumulativeCount()), timestampMs))
				}
				inf := prompb.Label{Name: "le", Value: formatBound(math.Inf(1))}
				series = append(series,
					sample(name+"_bucket", m.GetLabel(), &inf, float64(h.GetSampleCount()), timestampMs),
					sample(name+"_sum", m.GetLabel(), nil, h.GetSampleSum(), timestampMs),
					sample(name+"_count", m.GetLabel(), nil, float64(h.GetSampleCount()), timestampMs),
				)
			}
		}
	}
	return series
}

func sample(name string, pairs []*dto.LabelPair, extra *prompb.Label, value float64, ts int64) prompb.TimeSeries {
	labels := make([]prompb.Label, 0, len(pairs)+2)
	labels = append(labels, prompb.Label{Name: "__name__", Value: name})
	for _, p := range pairs {
		labels = append(labels, prompb.Label{Name: p.GetName(), Value: p.GetValue()})
	}
	if extra != nil {
		labels = append(labels, *extra)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i].Name < labels[j].Name })

	return prompb.TimeSeries{
		Labels:  labels,
		Samples: []prompb.Sample{{Value: value, Timestamp: ts}},
	}
}
