package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// ReadOBJ parses a Wavefront OBJ stream. Only v, vn and f records are
// used; polygons are fan-triangulated and negative indices are resolved
// relative to the current end of the list. Face normals are averaged from
// the vn references when every corner of every face has one.
func ReadOBJ(r io.Reader) (*Mesh, error) {
	var (
		vertices []mgl64.Vec3
		vnormals []mgl64.Vec3
		faces    []Tri
		fnormals []mgl64.Vec3
		complete = true
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v", "vn":
			if len(fields) < 4 {
				continue
			}
			v, err := parseVec3(fields[1:4])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			if fields[0] == "v" {
				vertices = append(vertices, v)
			} else {
				vnormals = append(vnormals, v)
			}

		case "f":
			var vi, ni []int
			ok := true
			for _, corner := range fields[1:] {
				refs := strings.Split(corner, "/")
				idx, err := resolveIndex(refs[0], len(vertices))
				if err != nil {
					ok = false
					break
				}
				vi = append(vi, idx)
				if len(refs) >= 3 && refs[2] != "" {
					if n, err := resolveIndex(refs[2], len(vnormals)); err == nil && n >= 0 && n < len(vnormals) {
						ni = append(ni, n)
					}
				}
			}
			if !ok || len(vi) < 3 {
				continue
			}
			hasNormals := len(ni) == len(vi)
			for i := 1; i < len(vi)-1; i++ {
				faces = append(faces, Tri{vi[0], vi[i], vi[i+1]})
				if hasNormals {
					sum := vnormals[ni[0]].Add(vnormals[ni[i]]).Add(vnormals[ni[i+1]])
					fnormals = append(fnormals, sum)
				} else {
					complete = false
				}
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read obj: %w", err)
	}

	if !complete || len(fnormals) != len(faces) {
		fnormals = nil
	}
	return New(vertices, faces, fnormals)
}

// LoadOBJ reads an OBJ file from disk.
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()

	m, err := ReadOBJ(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Load resolves a mesh reference: a built-in primitive name or an OBJ path.
func Load(ref string) (*Mesh, error) {
	if build, ok := primitives[ref]; ok {
		return build(), nil
	}
	return LoadOBJ(ref)
}

func parseVec3(fields []string) (mgl64.Vec3, error) {
	var v mgl64.Vec3
	for i, s := range fields {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return v, fmt.Errorf("parse coordinate %q: %w", s, err)
		}
		v[i] = f
	}
	return v, nil
}

// resolveIndex converts a 1-based (or negative, relative) OBJ index to a
// 0-based one. Range checking is left to New.
func resolveIndex(s string, count int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return count + n, nil
	}
	return n - 1, nil
}
