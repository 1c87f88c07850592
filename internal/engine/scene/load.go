package scene

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/chewxy/math32"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/gazebridge/internal/bridge"
	"github.com/Faultbox/gazebridge/internal/engine/entity"
	"github.com/Faultbox/gazebridge/internal/engine/mesh"
	"github.com/Faultbox/gazebridge/pkg/math"
)

// ErrInvalidDescription is returned for scene files that cannot be built.
var ErrInvalidDescription = errors.New("scene: invalid description")

// Description is a scene file: named meshes and the entities that use them.
type Description struct {
	Meshes   []MeshDesc   `yaml:"meshes"`
	Entities []EntityDesc `yaml:"entities"`
}

// MeshDesc describes one mesh. Kind selects which fields apply:
//
//	quad      width, height, z
//	box       size
//	triangle  vertices (exactly three)
//	raw       positions, indices
type MeshDesc struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`

	Width  float32 `yaml:"width"`
	Height float32 `yaml:"height"`
	Z      float32 `yaml:"z"`

	Size [3]float32 `yaml:"size"`

	Vertices [][3]float32 `yaml:"vertices"`

	Positions [][3]float32 `yaml:"positions"`
	Indices   []uint32     `yaml:"indices"`
}

// EntityDesc describes one entity. Matrix, when present, overrides
// position, rotation and scale.
type EntityDesc struct {
	Name     string           `yaml:"name"`
	Mesh     string           `yaml:"mesh"`
	Position [3]float32       `yaml:"position"`
	Rotation [3]float32       `yaml:"rotation"` // degrees about X, Y, Z
	Scale    *[3]float32      `yaml:"scale"`
	Matrix   *math.Mat4       `yaml:"matrix"`
	Material *entity.Material `yaml:"material"`
	Visible  *bool            `yaml:"visible"`
	Picking  bool             `yaml:"picking"`
	Pointees []PointeeDesc    `yaml:"pointees"`
}

// PointeeDesc describes an extra pointee attached to an entity.
type PointeeDesc struct {
	Name     string     `yaml:"name"`
	Kind     string     `yaml:"kind"` // mesh or sphere
	Mesh     string     `yaml:"mesh"`
	Center   [3]float32 `yaml:"center"`
	Radius   float32    `yaml:"radius"`
	Disabled bool       `yaml:"disabled"`
}

// LoadFile reads a YAML scene description.
func LoadFile(path string) (*Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a YAML scene description.
func Parse(data []byte) (*Description, error) {
	var desc Description
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("parsing scene: %w", err)
	}
	return &desc, nil
}

// Transform returns the entity's world model matrix.
func (d EntityDesc) Transform() math.Mat4 {
	if d.Matrix != nil {
		return *d.Matrix
	}
	scale := [3]float32{1, 1, 1}
	if d.Scale != nil {
		scale = *d.Scale
	}
	rad := func(deg float32) float32 { return deg * math32.Pi / 180 }

	return math.Translate(d.Position[0], d.Position[1], d.Position[2]).
		Mul(math.RotateY(rad(d.Rotation[1]))).
		Mul(math.RotateX(rad(d.Rotation[0]))).
		Mul(math.RotateZ(rad(d.Rotation[2]))).
		Mul(math.Scale(scale[0], scale[1], scale[2]))
}

// nameKey canonicalizes a scene name so composed and decomposed spellings of
// the same text refer to the same object.
func nameKey(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

func buildMesh(d MeshDesc) (*mesh.Mesh, error) {
	switch d.Kind {
	case "quad":
		if d.Width <= 0 || d.Height <= 0 {
			return nil, fmt.Errorf("%w: quad %q needs positive width and height", ErrInvalidDescription, d.Name)
		}
		return mesh.Quad(d.Width, d.Height, d.Z), nil
	case "box":
		if d.Size[0] <= 0 || d.Size[1] <= 0 || d.Size[2] <= 0 {
			return nil, fmt.Errorf("%w: box %q needs a positive size", ErrInvalidDescription, d.Name)
		}
		return mesh.Box(d.Size[0], d.Size[1], d.Size[2]), nil
	case "triangle":
		if len(d.Vertices) != 3 {
			return nil, fmt.Errorf("%w: triangle %q has %d vertices", ErrInvalidDescription, d.Name, len(d.Vertices))
		}
		return mesh.New(d.Vertices, []uint32{0, 1, 2})
	case "raw":
		return mesh.New(d.Positions, d.Indices)
	default:
		return nil, fmt.Errorf("%w: mesh %q has unknown kind %q", ErrInvalidDescription, d.Name, d.Kind)
	}
}

// Build instantiates desc into the scene and returns the created handles by
// name, in Unicode NFC form. Pointees without a name are keyed
// "<entity>/<index>". On error the objects created so far are destroyed again.
func (s *Scene) Build(desc *Description) (handles map[string]bridge.Handle, err error) {
	handles = make(map[string]bridge.Handle)
	var created []bridge.Handle
	defer func() {
		if err != nil {
			for i := len(created) - 1; i >= 0; i-- {
				s.Destroy(created[i])
			}
			handles = nil
		}
	}()

	claim := func(name string, h bridge.Handle) error {
		created = append(created, h)
		name = nameKey(name)
		if name == "" {
			return nil
		}
		if _, dup := handles[name]; dup {
			return fmt.Errorf("%w: duplicate name %q", ErrInvalidDescription, name)
		}
		handles[name] = h
		return nil
	}

	meshes := make(map[string]bridge.Handle)
	for _, md := range desc.Meshes {
		m, err := buildMesh(md)
		if err != nil {
			return nil, err
		}
		h := s.addMesh(m)
		if err := claim(md.Name, h); err != nil {
			return nil, err
		}
		meshes[nameKey(md.Name)] = h
	}

	lookupMesh := func(name string) (bridge.Handle, error) {
		name = nameKey(name)
		if name == "" {
			return bridge.Null, nil
		}
		h, ok := meshes[name]
		if !ok {
			return bridge.Null, fmt.Errorf("%w: unknown mesh %q", ErrInvalidDescription, name)
		}
		return h, nil
	}

	for _, ed := range desc.Entities {
		e := s.CreateEntity()
		if err := claim(ed.Name, e); err != nil {
			return nil, err
		}
		if err := s.buildEntity(e, ed, lookupMesh, claim); err != nil {
			return nil, err
		}
	}

	s.log.Info("scene built",
		zap.Int("meshes", len(desc.Meshes)),
		zap.Int("entities", len(desc.Entities)),
		zap.Int("handles", len(created)))
	return handles, nil
}

func (s *Scene) buildEntity(e bridge.Handle, ed EntityDesc,
	lookupMesh func(string) (bridge.Handle, error),
	claim func(string, bridge.Handle) error) error {

	meshHandle, err := lookupMesh(ed.Mesh)
	if err != nil {
		return err
	}
	if err := s.SetEntityMesh(e, meshHandle); err != nil {
		return err
	}
	if err := s.SetWorldModelMatrix(e, ed.Transform()); err != nil {
		return err
	}
	if ed.Material != nil {
		if err := s.SetEntityMaterial(e, *ed.Material); err != nil {
			return err
		}
	}
	if ed.Visible != nil {
		if err := s.SetEntityVisible(e, *ed.Visible); err != nil {
			return err
		}
	}
	if ed.Picking {
		if err := s.SetPickingEnabled(e, true); err != nil {
			return err
		}
	}

	for i, pd := range ed.Pointees {
		var p bridge.Handle
		switch pd.Kind {
		case "", "mesh":
			name := pd.Mesh
			if name == "" {
				name = ed.Mesh
			}
			mh, err := lookupMesh(name)
			if err != nil {
				return err
			}
			if p, err = s.CreateMeshEyePointee(mh); err != nil {
				return err
			}
		case "sphere":
			if p, err = s.CreateSphereEyePointee(pd.Center, pd.Radius); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: pointee %d of %q has unknown kind %q", ErrInvalidDescription, i, ed.Name, pd.Kind)
		}

		name := pd.Name
		if name == "" && ed.Name != "" {
			name = fmt.Sprintf("%s/%d", ed.Name, i)
		}
		if err := claim(name, p); err != nil {
			return err
		}
		if err := s.AttachPointee(e, p); err != nil {
			return err
		}
		if err := s.SetPointeeEnabled(p, !pd.Disabled); err != nil {
			return err
		}
		if err := s.RegisterPointee(p); err != nil {
			return err
		}
	}
	return nil
}
