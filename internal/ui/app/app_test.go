package app

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/cfdlab/foamtutor/internal/dialogue"
	"github.com/cfdlab/foamtutor/internal/knowledge"
	"github.com/cfdlab/foamtutor/internal/ui/router"
	"github.com/cfdlab/foamtutor/internal/ui/screens/concepts"
)

func newModel() Model {
	return New(context.Background(), dialogue.New(knowledge.DefaultGraph()), nil)
}

func TestNavigation(t *testing.T) {
	m := newModel()
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = updated.(Model)

	if _, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape}); cmd != nil {
		t.Error("esc on the root screen should do nothing")
	}

	m.Update(router.PushMsg{Screen: concepts.New(knowledge.DefaultGraph(), knowledge.LevelBeginner, nil)})
	if m.router.Depth() != 2 || m.router.Active().Title() != "Concepts" {
		t.Fatalf("depth = %d", m.router.Depth())
	}

	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("esc on a pushed screen should pop")
	}
	m.Update(cmd())
	if m.router.Depth() != 1 {
		t.Errorf("depth after esc = %d", m.router.Depth())
	}
}

func TestCtrlCQuits(t *testing.T) {
	m := newModel()
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	if cmd == nil {
		t.Fatal("ctrl+c produced no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should quit")
	}
}

func TestView(t *testing.T) {
	m := newModel()
	for _, size := range []tea.WindowSizeMsg{{Width: 40, Height: 10}, {Width: 100, Height: 30}} {
		updated, _ := m.Update(size)
		if v := updated.(Model).View(); !v.AltScreen {
			t.Errorf("%dx%d: expected alt-screen view", size.Width, size.Height)
		}
	}
}
