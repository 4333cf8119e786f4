// Package arbor is a retained-mode scene graph and composition root for
// [Ebitengine] games.
//
// A game is a tree of entities. Each [Entity] has a name, a depth used for
// ordering, a [Transform] and an ordered list of [Component] behaviors. A
// [Scene] is the root of a tree and keeps a depth-sorted list of the
// [Camera] entities inside it; every frame the scene is rendered once per
// camera.
//
// # Quick start
//
// The [Core] owns the device, the renderer, the entity [Registry] and the
// scene stack. A [Host] drives it from Ebitengine:
//
//	host := arbor.NewHost("My Game")
//	core := arbor.NewCore(arbor.WithLogger(log))
//	if err := core.Init(host, host); err != nil {
//		return err
//	}
//	scene, err := core.Registry().CreateScene("level-1")
//	if err != nil {
//		return err
//	}
//	core.Scenes().Push(scene)
//	return host.Run(core)
//
// # Entities and components
//
// Entities come from the registry, which wires them to the core and runs
// their Init before handing them out. Creation is fallible: it fails while
// the rendering device is not ready.
//
//	player, err := reg.Create("player")
//	if err != nil {
//		return err
//	}
//	err = reg.AttachComponent(player, arbor.NewSpriteRenderer("body", img))
//	scene.AddChild(player)
//
// User types embed [Entity], [Scene] or [Camera] and override phases.
// Build them with [CreateAs] so overrides dispatch:
//
//	type Level struct{ arbor.Scene }
//	func (l *Level) Update(dt float64) { ...; l.Scene.Update(dt) }
//	lvl, err := arbor.CreateAs[Level](reg, "level-1")
//
// Components are looked up by capability with [GetComponent]:
//
//	if d, ok := arbor.GetComponent[Damageable](enemy); ok {
//		d.Damage(10)
//	}
//
// # Frame phases
//
// [Core.Update] runs Update and LateUpdate over the active scene with a
// fixed time step and flushes queued events. [Core.Draw] clears the target,
// runs PreRender, Render and PostRender once per camera with
// [Scene.VisitingCamera] set, then RenderImage once, and presents. The
// [Host] calls Update once per Ebitengine tick and Draw once per displayed
// frame; [Core.Run] does both. Invisible entities skip the render phases for
// their whole subtree.
//
// # Scripting
//
// [Script] runs Lua hooks (on_enter, update, render and so on) for its
// entity through gopher-lua.
//
// # Settings
//
// Graphics settings are read from a TOML or YAML [FileStore] on Init and
// written back on [Core.Close].
//
// [Ebitengine]: https://ebitengine.org
package arbor
