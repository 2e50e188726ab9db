package main

import (
	"errors"
	"io"
	"testing"

	"github.com/san-kum/numlab/internal/config"
	"github.com/san-kum/numlab/internal/linsys"
)

func execute(t *testing.T, args ...string) error {
	t.Helper()
	cmd := newRootCmd()
	cmd.SetArgs(append(args, "--data="+t.TempDir()))
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	return cmd.Execute()
}

func TestLinear_RejectedInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"b longer than a", []string{"--a", "1,2;3,4", "--b", "1,2,3", "--method", "gauss"}, linsys.ErrDimension},
		{"not symmetric", []string{"--a", "4,1;2,3", "--b", "1,1", "--method", "sqrt"}, linsys.ErrNotSymmetric},
		{"ragged iterative", []string{"--a", "1,2;3", "--b", "1,2", "--method", "jacobi"}, linsys.ErrDimension},
		{"unknown method", []string{"--a", "1,0;0,1", "--b", "1,1", "--method", "cramer"}, linsys.ErrUnknownMethod},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"linear", "--no-save"}, tt.args...)
			if err := execute(t, args...); !errors.Is(err, tt.want) {
				t.Errorf("linear %v: error = %v, want %v", tt.args, err, tt.want)
			}
		})
	}
}

func TestLinear_Solves(t *testing.T) {
	if err := execute(t, "linear", "--no-save", "--a", "2,1;1,3", "--b", "3,4", "--verify"); err != nil {
		t.Fatal(err)
	}
	if err := execute(t, "linear", "--no-save", "--preset", "diagonally-dominant"); err != nil {
		t.Fatal(err)
	}
}

func TestTune(t *testing.T) {
	if err := execute(t, "tune", "--preset", "diagonally-dominant", "--method", "sor", "--param", "omega=0.8:1.4:7"); err != nil {
		t.Fatal(err)
	}
	if err := execute(t, "tune", "--preset", "sqrt2", "--param", "omega=1"); !errors.Is(err, config.ErrUnknownParam) {
		t.Errorf("expected ErrUnknownParam, got %v", err)
	}
}

func TestParseMatrix(t *testing.T) {
	m, err := parseMatrix("4, 1; 1 3")
	if err != nil {
		t.Fatal(err)
	}
	if len(m) != 2 || m[0][0] != 4 || m[0][1] != 1 || m[1][0] != 1 || m[1][1] != 3 {
		t.Errorf("parseMatrix = %v", m)
	}
	if _, err := parseMatrix("1,x"); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
	if _, err := parseMatrix(" ; "); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}
