package physics

import (
	"errors"
	"fmt"
	"math"
)

// ErrKinematicCycle is returned when the body tree contains a cycle.
var ErrKinematicCycle = errors.New("kinematic tree contains a cycle")

// Poses is a State holding world body poses computed by forward kinematics.
type Poses struct {
	XPos  []float64 // 3 per body
	XQuat []float64 // 4 per body (w, x, y, z)

	released bool
}

// NewState walks the body tree of m and composes each body's parent-frame
// pose into a world pose. Body 0 is the world frame.
func NewState(m Model) (*Poses, error) {
	bt := m.Bodies()
	n := bt.Len()
	s := &Poses{
		XPos:  make([]float64, 3*n),
		XQuat: make([]float64, 4*n),
	}
	if n == 0 {
		return s, nil
	}

	// 0 = pending, 1 = visiting, 2 = done
	mark := make([]uint8, n)
	var visit func(i int) error
	visit = func(i int) error {
		switch mark[i] {
		case 2:
			return nil
		case 1:
			return fmt.Errorf("%w: body %d", ErrKinematicCycle, i)
		}
		mark[i] = 1

		lp := vec3(bt.Pos, i)
		lq := quat4(bt.Quat, i)
		p := bt.Parent(i)
		if p < 0 || p >= n || p == i {
			s.set(i, lp, lq)
			mark[i] = 2
			return nil
		}
		if err := visit(p); err != nil {
			return err
		}
		pp := vec3(s.XPos, p)
		pq := quat4(s.XQuat, p)
		r := rotate(pq, lp)
		s.set(i, [3]float64{pp[0] + r[0], pp[1] + r[1], pp[2] + r[2]}, normalize(mulQuat(pq, lq)))
		mark[i] = 2
		return nil
	}

	for i := 0; i < n; i++ {
		if err := visit(i); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// BodyPose returns the world pose of body id.
func (s *Poses) BodyPose(id int) (pos [3]float64, quat [4]float64, ok bool) {
	if s.released || id < 0 || id*4+3 >= len(s.XQuat) {
		return pos, [4]float64{1, 0, 0, 0}, false
	}
	return vec3(s.XPos, id), quat4(s.XQuat, id), true
}

// Release drops the pose buffers.
func (s *Poses) Release() error {
	if s.released {
		return fmt.Errorf("state already released")
	}
	s.released = true
	s.XPos, s.XQuat = nil, nil
	return nil
}

func (s *Poses) set(i int, p [3]float64, q [4]float64) {
	copy(s.XPos[i*3:i*3+3], p[:])
	copy(s.XQuat[i*4:i*4+4], q[:])
}

func quat4(s []float64, i int) [4]float64 {
	if i < 0 || i*4+3 >= len(s) {
		return [4]float64{1, 0, 0, 0}
	}
	q := [4]float64{s[i*4], s[i*4+1], s[i*4+2], s[i*4+3]}
	if q == ([4]float64{}) {
		return [4]float64{1, 0, 0, 0}
	}
	return q
}

// mulQuat multiplies quaternions stored (w, x, y, z).
func mulQuat(a, b [4]float64) [4]float64 {
	return [4]float64{
		a[0]*b[0] - a[1]*b[1] - a[2]*b[2] - a[3]*b[3],
		a[0]*b[1] + a[1]*b[0] + a[2]*b[3] - a[3]*b[2],
		a[0]*b[2] - a[1]*b[3] + a[2]*b[0] + a[3]*b[1],
		a[0]*b[3] + a[1]*b[2] - a[2]*b[1] + a[3]*b[0],
	}
}

func rotate(q [4]float64, v [3]float64) [3]float64 {
	w, u := q[0], [3]float64{q[1], q[2], q[3]}
	t := cross(u, v)
	t = [3]float64{2 * t[0], 2 * t[1], 2 * t[2]}
	c := cross(u, t)
	return [3]float64{
		v[0] + w*t[0] + c[0],
		v[1] + w*t[1] + c[1],
		v[2] + w*t[2] + c[2],
	}
}

func cross(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func normalize(q [4]float64) [4]float64 {
	l := math.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
	if l == 0 {
		return [4]float64{1, 0, 0, 0}
	}
	return [4]float64{q[0] / l, q[1] / l, q[2] / l, q[3] / l}
}
