package solver

import (
	"errors"
	"math"

	"github.com/robogrid/handeye/pkg/geometry"
)

// Small fixed-size linear algebra for the 3x3 normal equations. Gaussian
// elimination with partial pivoting is plenty at this size.

type vec3 [3]float64

func (v vec3) add(o vec3) vec3 {
	return vec3{v[0] + o[0], v[1] + o[1], v[2] + o[2]}
}

type mat3 [3][3]float64

func identity3() mat3 {
	return mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

func skew(v geometry.Vec3) mat3 {
	return mat3{
		{0, -v.Z, v.Y},
		{v.Z, 0, -v.X},
		{-v.Y, v.X, 0},
	}
}

func rotationMatrix(q geometry.Quaternion) mat3 {
	x, y, z, w := q.X, q.Y, q.Z, q.W
	return mat3{
		{1 - 2*(y*y+z*z), 2 * (x*y - z*w), 2 * (x*z + y*w)},
		{2 * (x*y + z*w), 1 - 2*(x*x+z*z), 2 * (y*z - x*w)},
		{2 * (x*z - y*w), 2 * (y*z + x*w), 1 - 2*(x*x+y*y)},
	}
}

func (m mat3) add(o mat3) mat3 {
	var r mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[i][j] + o[i][j]
		}
	}
	return r
}

func (m mat3) sub(o mat3) mat3 {
	var r mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[i][j] - o[i][j]
		}
	}
	return r
}

func (m mat3) mul(o mat3) mat3 {
	var r mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			sum := 0.0
			for k := 0; k < 3; k++ {
				sum += m[i][k] * o[k][j]
			}
			r[i][j] = sum
		}
	}
	return r
}

func (m mat3) transpose() mat3 {
	var r mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[j][i]
		}
	}
	return r
}

func (m mat3) apply(v vec3) vec3 {
	var r vec3
	for i := 0; i < 3; i++ {
		r[i] = m[i][0]*v[0] + m[i][1]*v[1] + m[i][2]*v[2]
	}
	return r
}

// solve3x3 solves A x = b using Gaussian elimination with partial
// pivoting. Returns an error if the matrix is singular.
func solve3x3(a mat3, b vec3) (vec3, error) {
	var aug [3][4]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			aug[i][j] = a[i][j]
		}
		aug[i][3] = b[i]
	}

	for col := 0; col < 3; col++ {
		pivot := col
		maxAbs := math.Abs(aug[col][col])
		for r := col + 1; r < 3; r++ {
			if math.Abs(aug[r][col]) > maxAbs {
				maxAbs = math.Abs(aug[r][col])
				pivot = r
			}
		}
		if maxAbs < 1e-12 {
			return vec3{}, errors.New("matrix is singular (zero pivot)")
		}
		if pivot != col {
			aug[col], aug[pivot] = aug[pivot], aug[col]
		}
		for r := col + 1; r < 3; r++ {
			factor := aug[r][col] / aug[col][col]
			for c := col; c < 4; c++ {
				aug[r][c] -= factor * aug[col][c]
			}
		}
	}

	var x vec3
	for i := 2; i >= 0; i-- {
		sum := aug[i][3]
		for j := i + 1; j < 3; j++ {
			sum -= aug[i][j] * x[j]
		}
		x[i] = sum / aug[i][i]
	}
	return x, nil
}
