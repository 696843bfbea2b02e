package repl

import (
	"reflect"
	"testing"
)

func TestCompleter_Complete(t *testing.T) {
	c := NewCompleter("routes", "routes tree", "routes subroutes", "routes invalidate", "hod", "hod list", "report download", "routes tree")

	tests := []struct {
		name   string
		prefix string
		want   []string
	}{
		{"routes", "routes", []string{"routes", "routes invalidate", "routes subroutes", "routes tree"}},
		{"routes space", "routes ", []string{"routes invalidate", "routes subroutes", "routes tree"}},
		{"extra spaces", "routes   t", []string{"routes tree"}},
		{"hod l", "hod l", []string{"hod list"}},
		{"builtin", "hi", []string{"history"}},
		{"no match", "nothing", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Complete(tt.prefix); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Complete(%q) = %v, want %v", tt.prefix, got, tt.want)
			}
		})
	}
}

func TestCompleter_CommandsDeduplicated(t *testing.T) {
	c := NewCompleter("help", "login", "login")
	want := []string{"exit", "help", "history", "login", "quit"}
	if got := c.Commands(); !reflect.DeepEqual(got, want) {
		t.Errorf("Commands() = %v, want %v", got, want)
	}
}
