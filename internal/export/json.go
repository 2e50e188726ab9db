package export

import (
	"encoding/json"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/san-kum/numlab/internal/experiment"
	"github.com/san-kum/numlab/internal/linsys"
)

// Float is a float64 that encodes NaN and infinities as null.
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

func (f *Float) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = Float(math.NaN())
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

type RootState struct {
	K          int     `json:"k"`
	X          Float   `json:"x"`
	XPrev      Float   `json:"x_prev"`
	FX         Float   `json:"fx"`
	AbsError   Float   `json:"abs_error"`
	ErrorRatio Float   `json:"error_ratio"`
	Support    []Float `json:"support,omitempty"`
}

type LinearState struct {
	K        int     `json:"k"`
	Residual Float   `json:"residual"`
	X        []Float `json:"x"`
}

type Document struct {
	Kind      string                 `json:"kind"`
	Method    string                 `json:"method"`
	Problem   string                 `json:"problem"`
	Converged bool                   `json:"converged"`
	Steps     int                    `json:"steps"`
	Metrics   map[string]Float       `json:"metrics,omitempty"`
	Root      []RootState            `json:"root_states,omitempty"`
	Linear    []LinearState          `json:"linear_states,omitempty"`
	Direct    *linsys.DirectSolution `json:"direct,omitempty"`
}

func NewDocument(out *experiment.Outcome) *Document {
	doc := &Document{
		Method:    out.Method(),
		Converged: out.Converged(),
		Steps:     out.Steps(),
		Direct:    out.Direct,
	}
	if out.Config != nil {
		doc.Kind = out.Config.Kind
		doc.Problem = out.Config.Name()
	}
	if m := out.Metrics(); len(m) > 0 {
		doc.Metrics = make(map[string]Float, len(m))
		for k, v := range m {
			doc.Metrics[k] = Float(v)
		}
	}
	if out.Root != nil {
		doc.Root = make([]RootState, len(out.Root.States))
		for i, st := range out.Root.States {
			doc.Root[i] = RootState{
				K:          st.K,
				X:          Float(st.X),
				XPrev:      Float(st.XPrev),
				FX:         Float(st.FX),
				AbsError:   Float(st.AbsError),
				ErrorRatio: Float(st.ErrorRatio),
				Support:    floats(st.Support),
			}
		}
	}
	if out.Iterative != nil {
		doc.Linear = make([]LinearState, len(out.Iterative.States))
		for i, st := range out.Iterative.States {
			doc.Linear[i] = LinearState{K: st.K, Residual: Float(st.Residual), X: floats(st.X)}
		}
	}
	return doc
}

func floats(vs []float64) []Float {
	if vs == nil {
		return nil
	}
	out := make([]Float, len(vs))
	for i, v := range vs {
		out[i] = Float(v)
	}
	return out
}

// WriteJSON writes the outcome as indented JSON.
func WriteJSON(w io.Writer, out *experiment.Outcome) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewDocument(out))
}

// WriteJSONFile writes to path, or to stdout when path is "-".
func WriteJSONFile(path string, out *experiment.Outcome) error {
	if path == "-" {
		return WriteJSON(os.Stdout, out)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := WriteJSON(file, out); err != nil {
		return err
	}
	return file.Close()
}
