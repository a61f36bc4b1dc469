package feature

// Labels tracks a slice of feature names and their index locations that match up
// with the ordering of the values in a feature vector or model coefficients.
type Labels struct {
	idx    map[string]int
	labels []string
}

func NewLabels(labels []string) *Labels {
	idx := make(map[string]int)
	for i := 0; i < len(labels); i++ {
		idx[labels[i]] = i
	}
	fl := &Labels{
		labels: labels,
		idx:    idx,
	}
	return fl
}

// CanonicalLabels returns the labels of the model features in vector order
func CanonicalLabels() *Labels {
	return NewLabels(Columns())
}

func (f *Labels) Len() int {
	return len(f.labels)
}

func (f *Labels) Labels() []string {
	labels := make([]string, len(f.labels))
	copy(labels, f.labels)
	return labels
}

func (f *Labels) Index(label string) (int, bool) {
	if idx, exists := f.idx[label]; exists {
		return idx, exists
	}
	return -1, false
}
