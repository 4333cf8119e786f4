package arbor

// DefaultCameraName is the name of the camera every scene creates on Init.
const DefaultCameraName = "Default Camera"

// Scene is a root entity that also keeps a secondary, non-owning index of
// the cameras in its subtree. Cameras are still owned by their parents in
// the normal hierarchy.
type Scene struct {
	Entity

	cameras      []*Camera
	camerasDirty bool
	visiting     *Camera
}

func (s *Scene) scene() *Scene { return s }

// Init runs the generic Init, then asks the registry for a camera, names it
// DefaultCameraName and adds it as a child, so every scene starts renderable.
func (s *Scene) Init(core *Core) error {
	s.kind = KindScene
	if err := s.Entity.Init(core); err != nil {
		return err
	}
	reg := s.Registry()
	if reg == nil {
		return ErrNotInitialized
	}
	cam, err := reg.CreateCamera()
	if err != nil {
		return err
	}
	cam.SetName(DefaultCameraName)
	s.AddChild(cam)
	return nil
}

// LateUpdate runs the generic LateUpdate, then SortCameras.
func (s *Scene) LateUpdate() {
	s.Entity.LateUpdate()
	s.SortCameras()
}

// SortCameras stable-sorts the camera list by ascending depth when it is
// marked dirty, then clears the mark. No-op otherwise.
func (s *Scene) SortCameras() {
	if !s.camerasDirty {
		return
	}
	for i := 1; i < len(s.cameras); i++ {
		key := s.cameras[i]
		j := i - 1
		for j >= 0 && s.cameras[j].depth > key.depth {
			s.cameras[j+1] = s.cameras[j]
			j--
		}
		s.cameras[j+1] = key
	}
	s.camerasDirty = false
}

// MarkCamerasDirty schedules a camera re-sort for the next SortCameras.
func (s *Scene) MarkCamerasDirty() {
	s.camerasDirty = true
}

// CamerasDirty reports whether the camera list awaits a re-sort.
func (s *Scene) CamerasDirty() bool {
	return s.camerasDirty
}

// Cameras returns the scene's camera list. The returned slice MUST NOT be mutated.
func (s *Scene) Cameras() []*Camera {
	return s.cameras
}

// DefaultCamera returns the camera created by Init, or nil if it was removed
// or renamed.
func (s *Scene) DefaultCamera() *Camera {
	for _, c := range s.cameras {
		if c.name == DefaultCameraName && c.parent == &s.Entity {
			return c
		}
	}
	return nil
}

// VisitingCamera returns the camera currently rendering the scene, or nil
// outside RenderCameras.
func (s *Scene) VisitingCamera() *Camera {
	return s.visiting
}

// RenderCameras runs PreRender, Render and PostRender over the scene once per
// camera, in camera order, with VisitingCamera set for the duration of each
// pass. Invisible cameras are skipped.
func (s *Scene) RenderCameras() {
	s.SortCameras()
	cams := s.cameras
	for _, cam := range cams {
		if !cam.Visible {
			continue
		}
		s.visiting = cam
		obj := s.object()
		obj.PreRender()
		obj.Render()
		obj.PostRender()
	}
	s.visiting = nil
}

func (s *Scene) addCamera(c *Camera) {
	for _, existing := range s.cameras {
		if existing == c {
			return
		}
	}
	s.cameras = append(s.cameras, c)
	s.camerasDirty = true
}

func (s *Scene) removeCamera(c *Camera) {
	for i, existing := range s.cameras {
		if existing == c {
			s.cameras = append(s.cameras[:i:i], s.cameras[i+1:]...)
			s.camerasDirty = true
			if s.visiting == c {
				s.visiting = nil
			}
			return
		}
	}
}
