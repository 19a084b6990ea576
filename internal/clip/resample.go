package clip

import "slices"

// Resample converts c to rate using two-point linear interpolation.
//
// Output sample k is taken at source position k*c.SampleRate/rate, blending the
// two neighbouring source samples. Positions past the last sample read as
// silence, so the final segment fades toward zero and a one-sample clip
// interpolates between its only sample and silence. The output holds exactly
// floor(len*rate/c.SampleRate) samples; an empty clip stays empty.
//
// When rate equals c.SampleRate a deep copy is returned.
func Resample(c *Clip, rate int) (*Clip, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if rate <= 0 {
		return nil, ErrInvalidSampleRate
	}

	out := &Clip{
		ID:         c.ID,
		Name:       c.Name,
		Date:       c.Date,
		SampleRate: rate,
	}
	if rate == c.SampleRate {
		out.Samples = slices.Clone(c.Samples)
		if out.Samples == nil {
			out.Samples = []float32{}
		}
		return out, nil
	}

	n := int(int64(len(c.Samples)) * int64(rate) / int64(c.SampleRate))
	out.Samples = make([]float32, n)

	step := float64(c.SampleRate) / float64(rate)
	for k := range n {
		pos := float64(k) * step
		i := int(pos)
		frac := float32(pos - float64(i))

		a := sampleAt(c.Samples, i)
		b := sampleAt(c.Samples, i+1)
		out.Samples[k] = a + (b-a)*frac
	}

	return out, nil
}

func sampleAt(s []float32, i int) float32 {
	if i < 0 || i >= len(s) {
		return 0
	}
	return s[i]
}
