package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/milk9111/stickyshot/ecs/system"
	"github.com/milk9111/stickyshot/prefabs"
)

// startWatcher watches prefabs/ and prefabs/scripts/ when run from the repo
// root. Outside it the embedded copies are all there is, so nil is fine.
func startWatcher() *prefabs.Watcher {
	var dirs []string
	for _, dir := range []string{"prefabs", filepath.Join("prefabs", "scripts")} {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			dirs = append(dirs, dir)
		}
	}
	if len(dirs) == 0 {
		return nil
	}
	w, err := prefabs.NewWatcher(dirs...)
	if err != nil {
		log.Printf("sandbox: watch prefabs: %v", err)
		return nil
	}
	return w
}

func (g *Game) pollReloads() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case change, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			g.reload(change)
		case err, ok := <-g.watcher.Errors:
			if !ok {
				g.watcher = nil
				return
			}
			log.Printf("sandbox: watch: %v", err)
		default:
			return
		}
	}
}

func (g *Game) reload(change prefabs.Change) {
	name := filepath.Base(change.Path)
	switch change.Kind {
	case prefabs.ChangeScript:
		g.reactions.Invalidate(name)
		log.Printf("sandbox: reloaded script %s", name)
	case prefabs.ChangeSpec:
		if name != "physics.yaml" {
			log.Printf("sandbox: %s changed, new spawns will use it", name)
			return
		}
		cfg, err := system.LoadPhysicsConfig()
		if err != nil {
			log.Printf("sandbox: reload physics: %v", err)
			return
		}
		if g.opts.Prod {
			cfg.CheckInvariants = false
		}
		g.physics.SetConfig(cfg)
		log.Printf("sandbox: reloaded physics config")
	}
}
