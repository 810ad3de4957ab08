package plugin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuild/internal/config"
	"git.home.luguber.info/inful/sitebuild/internal/site"
)

type namedPlugin struct{ name string }

func (p *namedPlugin) Name() string { return p.name }

type filesPlugin struct{ namedPlugin }

func (p *filesPlugin) OnFiles(ctx context.Context, files *site.Collection, cfg *config.Config) error {
	return nil
}

type servePlugin struct{ namedPlugin }

func (p *servePlugin) OnServe(w Watcher, cfg *config.Config) {}

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	p := &namedPlugin{name: "alpha"}

	require.NoError(t, r.Register(p))

	got, err := r.Get("alpha")
	require.NoError(t, err)
	assert.Same(t, p, got)

	_, err = r.Get("missing")
	require.Error(t, err)
}

func TestRegistryRejectsDuplicatesAndInvalid(t *testing.T) {
	r := NewRegistry()

	require.Error(t, r.Register(nil))
	require.Error(t, r.Register(&namedPlugin{name: ""}))

	require.NoError(t, r.Register(&namedPlugin{name: "alpha"}))
	err := r.Register(&namedPlugin{name: "alpha"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRegistryListPreservesOrder(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&namedPlugin{name: "first"}))
	require.NoError(t, r.Register(&namedPlugin{name: "second"}))
	require.NoError(t, r.Register(&namedPlugin{name: "third"}))

	names := make([]string, 0, 3)
	for _, p := range r.List() {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{"first", "second", "third"}, names)
}

func TestRegistryCapabilityFiltering(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&namedPlugin{name: "plain"}))
	require.NoError(t, r.Register(&filesPlugin{namedPlugin{name: "collector"}}))
	require.NoError(t, r.Register(&servePlugin{namedPlugin{name: "watcher"}}))

	collectors := r.FilesCollectors()
	require.Len(t, collectors, 1)
	assert.Equal(t, "collector", collectors[0].Name())

	hooks := r.ServeHooks()
	require.Len(t, hooks, 1)
	assert.Equal(t, "watcher", hooks[0].Name())

	assert.Empty(t, r.Configurers())
}
