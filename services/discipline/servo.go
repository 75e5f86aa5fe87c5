package discipline

import "ppsdo-go/x/mathx"

// pi is a proportional-integral servo on the fractional frequency error.
// The output is the absolute trim offset to apply, in ppm.
type pi struct {
	kp, ki   float64
	limit    float64
	integral float64
}

// sample takes the error measured with the current trim applied and returns
// the next trim. Positive error means the local clock runs fast.
func (p *pi) sample(errPPM float64) float64 {
	p.integral = mathx.Clamp(p.integral+p.ki*errPPM, -p.limit, p.limit)
	return mathx.Clamp(-(p.kp*errPPM + p.integral), -p.limit, p.limit)
}

// seed makes the integrator hold offset with zero error.
func (p *pi) seed(offset float64) { p.integral = -mathx.Clamp(offset, -p.limit, p.limit) }

func (p *pi) reset() { p.integral = 0 }
