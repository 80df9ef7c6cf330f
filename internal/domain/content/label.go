package content

// DetectedLabel is one result of image label detection. Only Name flows into
// generation; Confidence is kept for logging.
type DetectedLabel struct {
	Name       string  `json:"name"`
	Confidence float32 `json:"confidence"`
}

func LabelNames(labels []DetectedLabel) []string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		out = append(out, l.Name)
	}
	return out
}
