package orbital

import (
	"math"
	"testing"
)

const quatEps = 1e-12

func quatNear(a, b Quaternion) bool {
	return math.Abs(a.X-b.X) < quatEps &&
		math.Abs(a.Y-b.Y) < quatEps &&
		math.Abs(a.Z-b.Z) < quatEps &&
		math.Abs(a.W-b.W) < quatEps
}

func TestQuaternionIdentity(t *testing.T) {
	q := QuaternionIdentity()
	if q.W != 1 || q.X != 0 || q.Y != 0 || q.Z != 0 {
		t.Fatalf("identity = %+v", q)
	}
	axis, angle := q.ToAxisAngle()
	if angle != 0 {
		t.Errorf("identity angle = %v, want 0", angle)
	}
	if axis != defaultAxis {
		t.Errorf("identity axis = %+v, want default +Y", axis)
	}
}

func TestFromYawPitchIsUnit(t *testing.T) {
	for _, yaw := range []float64{0, 0.5, math.Pi, 1.5 * math.Pi, 2*math.Pi - 0.01} {
		for _, pitch := range []float64{0, 10, 15, 30} {
			q := FromYawPitch(yaw, pitch)
			if n := q.Norm(); math.Abs(n-1) > quatEps {
				t.Errorf("FromYawPitch(%v, %v) norm = %v", yaw, pitch, n)
			}
		}
	}
}

func TestFromYawPitchComposition(t *testing.T) {
	// Building from yaw and pitch must equal composing the pure-axis
	// quaternions qYaw * qPitch.
	yaw, pitch := 1.2, 25.0
	rad := pitch * math.Pi / 180

	qYaw := Quaternion{Y: math.Sin(yaw / 2), W: math.Cos(yaw / 2)}
	qPitch := Quaternion{X: math.Sin(rad / 2), W: math.Cos(rad / 2)}

	got := FromYawPitch(yaw, pitch)
	want := qYaw.Mul(qPitch)
	if !quatNear(got, want) {
		t.Errorf("FromYawPitch = %+v, want %+v", got, want)
	}
}

func TestPureYawAxisAngle(t *testing.T) {
	q := FromYawPitch(1.0, 0)
	axis, angle := q.ToAxisAngle()
	if math.Abs(angle-1.0) > quatEps {
		t.Errorf("angle = %v, want 1.0", angle)
	}
	if math.Abs(axis.Y-1) > quatEps || math.Abs(axis.X) > quatEps || math.Abs(axis.Z) > quatEps {
		t.Errorf("axis = %+v, want +Y", axis)
	}
}

func TestToAxisAngleDegenerate(t *testing.T) {
	// A rotation too small to define an axis returns the default axis
	// instead of NaN from the vanishing divisor.
	q := FromYawPitch(1e-12, 0)
	axis, angle := q.ToAxisAngle()
	if angle != 0 {
		t.Errorf("near-zero rotation angle = %v, want 0", angle)
	}
	if axis != defaultAxis {
		t.Errorf("near-zero rotation axis = %+v, want default", axis)
	}
	if math.IsNaN(axis.X) || math.IsNaN(axis.Y) || math.IsNaN(axis.Z) {
		t.Error("degenerate axis contains NaN")
	}
}

func TestNormalizeZero(t *testing.T) {
	q := Quaternion{}.Normalize()
	if q != QuaternionIdentity() {
		t.Errorf("zero quaternion normalized to %+v, want identity", q)
	}
}

func TestMulIdentity(t *testing.T) {
	q := FromYawPitch(0.7, 12)
	if got := q.Mul(QuaternionIdentity()); !quatNear(got, q) {
		t.Errorf("q * identity = %+v, want %+v", got, q)
	}
	if got := QuaternionIdentity().Mul(q); !quatNear(got, q) {
		t.Errorf("identity * q = %+v, want %+v", got, q)
	}
}
