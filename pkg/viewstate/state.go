// Package viewstate replays a persisted table configuration onto a freshly
// loaded table.
package viewstate

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ColumnState is the persisted layout of one column. Pointer fields
// distinguish "not persisted" from zero values so they are replayed verbatim.
type ColumnState struct {
	ColID         string   `json:"colId"`
	Width         *float64 `json:"width,omitempty"`
	Hide          *bool    `json:"hide,omitempty"`
	Pinned        any      `json:"pinned,omitempty"`
	Sort          *string  `json:"sort,omitempty"`
	SortIndex     *int     `json:"sortIndex,omitempty"`
	AggFunc       any      `json:"aggFunc,omitempty"`
	RowGroup      *bool    `json:"rowGroup,omitempty"`
	RowGroupIndex *int     `json:"rowGroupIndex,omitempty"`
	Pivot         *bool    `json:"pivot,omitempty"`
	PivotIndex    *int     `json:"pivotIndex,omitempty"`
	Flex          *float64 `json:"flex,omitempty"`
}

// ViewState is the persisted interactive configuration of a table. Every
// field is optional.
type ViewState struct {
	FilterModel  map[string]any `json:"filterModel,omitempty"`
	ColumnState  []ColumnState  `json:"columnState,omitempty"`
	PivotMode    bool           `json:"pivotMode"`
	RowGroupCols ColumnList     `json:"rowGroupCols,omitempty"`
	PivotCols    ColumnList     `json:"pivotCols,omitempty"`
	ValueCols    ColumnList     `json:"valueCols,omitempty"`
}

// UnmarshalJSON reads the filter model from either filterModel or the legacy
// filters member. filterModel wins when both are present.
func (v *ViewState) UnmarshalJSON(data []byte) error {
	type plain ViewState
	var aux struct {
		plain
		Filters map[string]any `json:"filters"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*v = ViewState(aux.plain)
	if v.FilterModel == nil && aux.Filters != nil {
		v.FilterModel = aux.Filters
	}
	return nil
}

// ColumnList is an ordered list of column IDs. Entries may be persisted as
// plain strings or as column objects carrying colId, id or field.
type ColumnList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *ColumnList) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*l = nil
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("viewstate: column list: %w", err)
	}
	out := make(ColumnList, 0, len(items))
	for i, item := range items {
		var id string
		if err := json.Unmarshal(item, &id); err == nil {
			out = append(out, id)
			continue
		}
		var obj struct {
			ColID string `json:"colId"`
			ID    string `json:"id"`
			Field string `json:"field"`
		}
		if err := json.Unmarshal(item, &obj); err != nil {
			return fmt.Errorf("viewstate: column list entry %d: %w", i, err)
		}
		switch {
		case obj.ColID != "":
			out = append(out, obj.ColID)
		case obj.ID != "":
			out = append(out, obj.ID)
		case obj.Field != "":
			out = append(out, obj.Field)
		default:
			return fmt.Errorf("viewstate: column list entry %d has no column id", i)
		}
	}
	*l = out
	return nil
}

// FromGridState builds a ViewState from a decoded grid_state value. A nil
// value yields a nil state. Values that are not objects, such as a grid_state
// string that failed to decode, are reported as errors.
func FromGridState(value any) (*ViewState, error) {
	if value == nil {
		return nil, nil
	}
	if _, ok := value.(map[string]any); !ok {
		return nil, fmt.Errorf("viewstate: grid state has type %T", value)
	}
	var state ViewState
	if err := remarshal(value, &state); err != nil {
		return nil, fmt.Errorf("viewstate: grid state: %w", err)
	}
	return &state, nil
}

// FromFiltersAndSorting builds a ViewState from the filters and sorting
// members persisted alongside a chart. sorting is a column state list. Both
// nil yields a nil state. A malformed member is skipped and reported while the
// other is kept.
func FromFiltersAndSorting(filters, sorting any) (*ViewState, error) {
	if filters == nil && sorting == nil {
		return nil, nil
	}

	state := &ViewState{}
	var firstErr error

	if filters != nil {
		model, ok := filters.(map[string]any)
		if ok {
			state.FilterModel = model
		} else {
			firstErr = fmt.Errorf("viewstate: filters has type %T", filters)
		}
	}

	if sorting != nil {
		var columnState []ColumnState
		if _, ok := sorting.([]any); !ok {
			if firstErr == nil {
				firstErr = fmt.Errorf("viewstate: sorting has type %T", sorting)
			}
		} else if err := remarshal(sorting, &columnState); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("viewstate: sorting: %w", err)
			}
		} else {
			state.ColumnState = columnState
		}
	}

	return state, firstErr
}

func remarshal(in any, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
