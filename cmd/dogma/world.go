package main

import (
	"fmt"

	"github.com/seedwing-io/dogma-engine/internal/config"
	"github.com/seedwing-io/dogma-engine/internal/dogma/corefunc"
	"github.com/seedwing-io/dogma-engine/internal/dogma/resolve"
	"github.com/seedwing-io/dogma-engine/internal/dogma/world"
	"github.com/seedwing-io/dogma-engine/pkg/corefuncplugin"
	"github.com/seedwing-io/dogma-engine/pkg/dogmafunc/base64"
	"github.com/seedwing-io/dogma-engine/pkg/dogmafunc/digest"
	"github.com/seedwing-io/dogma-engine/pkg/dogmafunc/like"
	"github.com/seedwing-io/dogma-engine/pkg/dogmafunc/script"
)

// buildRegistry registers the in-process demo core functions named in
// cfg.Enabled, then dials a corefuncplugin subprocess for each entry in
// cfg.Plugins and registers its Impl under that plugin's id.
func buildRegistry(cfg config.CoreFuncsConfig) (*corefunc.Registry, []*corefuncplugin.Client, error) {
	reg := corefunc.NewRegistry()

	registrars := map[string]func(*corefunc.Registry) error{
		"Base64": base64.Register,
		"Like":   like.Register,
		"Digest": digest.Register,
		"Script": script.Register,
	}

	for _, name := range cfg.Enabled {
		fn, ok := registrars[name]
		if !ok {
			return nil, nil, fmt.Errorf("dogma: unknown core function %q", name)
		}
		if err := fn(reg); err != nil {
			return nil, nil, fmt.Errorf("dogma: registering %s: %w", name, err)
		}
	}

	var clients []*corefuncplugin.Client
	for id, execPath := range cfg.Plugins {
		client, err := corefuncplugin.Dial(id, execPath)
		if err != nil {
			return nil, nil, fmt.Errorf("dogma: dialing plugin %s: %w", id, err)
		}
		clients = append(clients, client)
		// Out-of-process core functions are registered with arity 0; a
		// plugin that needs bound arguments must accept them as part of
		// its input value instead, since the plugin manifest has no
		// channel to declare its own arity yet.
		if err := reg.Register(id, 0, "out-of-process core function", client.Impl()); err != nil {
			return nil, nil, fmt.Errorf("dogma: registering plugin %s: %w", id, err)
		}
	}

	return reg, clients, nil
}

// closeAll closes every dialed plugin client, used by callers via defer.
func closeAll(clients []*corefuncplugin.Client) {
	for _, c := range clients {
		c.Close()
	}
}

// loadWorld builds the policy World described by cfg using reg as its
// core function registry.
func loadWorld(cfg *config.Config, reg *corefunc.Registry) (*resolve.World, error) {
	sources := make([]world.Source, 0, len(cfg.World.Sources))
	for _, s := range cfg.World.Sources {
		sources = append(sources, world.Source{Root: s.Path, ModulePrefix: s.ModulePrefix})
	}

	loader, err := world.NewLoader(sources, reg)
	if err != nil {
		return nil, fmt.Errorf("dogma: %w", err)
	}
	w, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("dogma: %w", err)
	}
	return w, nil
}
