package gateway_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/kfpc0808/researchtmfax/pkg/model"
	"github.com/kfpc0808/researchtmfax/pkg/usecase/gateway"
)

// Mock Tabular
type memSheet struct {
	header []string
	rows   []map[string]string
}

type memTabular struct {
	sheets  map[string]*memSheet
	appends int
	updates int
	deletes int
}

func newMemTabular() *memTabular {
	return &memTabular{sheets: map[string]*memSheet{}}
}

func (m *memTabular) addSheet(name string, header []string, rows ...map[string]string) {
	sheet := &memSheet{header: header}
	for _, row := range rows {
		sheet.rows = append(sheet.rows, cloneFields(row))
	}
	m.sheets[name] = sheet
}

func cloneFields(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}

func (m *memTabular) Exists(ctx context.Context, collection string) (bool, error) {
	_, ok := m.sheets[collection]
	return ok, nil
}

func (m *memTabular) FetchAll(ctx context.Context, collection string) (*model.Snapshot, error) {
	sheet, ok := m.sheets[collection]
	if !ok {
		return nil, model.ErrCollectionNotFound
	}

	snapshot := &model.Snapshot{Header: append([]string{}, sheet.header...)}
	for i, fields := range sheet.rows {
		snapshot.Rows = append(snapshot.Rows, model.Row{
			Number: i + 2,
			Fields: cloneFields(fields),
		})
	}
	return snapshot, nil
}

func (m *memTabular) Append(ctx context.Context, collection string, fields map[string]string) error {
	sheet, ok := m.sheets[collection]
	if !ok {
		return model.ErrCollectionNotFound
	}
	m.appends++
	sheet.rows = append(sheet.rows, cloneFields(fields))
	return nil
}

func (m *memTabular) UpdateAt(ctx context.Context, collection string, index int, fields map[string]string) error {
	sheet, ok := m.sheets[collection]
	if !ok {
		return model.ErrCollectionNotFound
	}
	if index < 0 || index >= len(sheet.rows) {
		return model.ErrRowNotFound
	}
	m.updates++
	for k, v := range fields {
		sheet.rows[index][k] = v
	}
	return nil
}

func (m *memTabular) DeleteAt(ctx context.Context, collection string, index int) error {
	sheet, ok := m.sheets[collection]
	if !ok {
		return model.ErrCollectionNotFound
	}
	if index < 0 || index >= len(sheet.rows) {
		return model.ErrRowNotFound
	}
	m.deletes++
	sheet.rows = append(sheet.rows[:index], sheet.rows[index+1:]...)
	return nil
}

func ptr(i int) *int { return &i }

func TestDispatchInvalidAction(t *testing.T) {
	mem := newMemTabular()
	mem.addSheet("Companies", []string{"name"})
	uc := gateway.New(mem)

	_, err := uc.Dispatch(context.Background(), &model.Request{
		Action:     "destroy",
		Collection: "Companies",
	})
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrInvalidAction))
}

func TestDispatchUnknownCollection(t *testing.T) {
	uc := gateway.New(newMemTabular())

	_, err := uc.Dispatch(context.Background(), &model.Request{
		Action:     model.ActionRead,
		Collection: "Nowhere",
	})
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrCollectionNotFound))
}

func TestDispatchRead(t *testing.T) {
	mem := newMemTabular()
	mem.addSheet("Companies", []string{"name", "city"},
		map[string]string{"name": "Acme", "city": "Seoul"},
		map[string]string{"name": "Globex", "city": "Busan"},
		map[string]string{"name": "Initech", "city": "Seoul"},
	)
	uc := gateway.New(mem)

	result, err := uc.Dispatch(context.Background(), &model.Request{
		Action:     model.ActionRead,
		Collection: "Companies",
		Payload:    model.Payload{Filter: map[string]string{"city": "seoul"}},
	})
	gt.NoError(t, err)

	read := gt.Cast[*model.ReadResult](t, result)
	gt.Equal(t, read.Total, 2)
	gt.A(t, read.Data).Length(2)
	gt.Equal(t, read.Data[1]["originalIndex"], 2)
}

func TestDispatchReadAll(t *testing.T) {
	mem := newMemTabular()
	mem.addSheet("Companies", []string{"name"},
		map[string]string{"name": "Acme"},
		map[string]string{"name": "Globex"},
	)
	uc := gateway.New(mem)

	result, err := uc.Dispatch(context.Background(), &model.Request{
		Action:     model.ActionReadAll,
		Collection: "Companies",
	})
	gt.NoError(t, err)

	views := gt.Cast[[]model.RowView](t, result)
	gt.A(t, views).Length(2)
	gt.Equal(t, views[0]["originalIndex"], 0)
	gt.Equal(t, views[1]["name"], "Globex")
}

func TestDispatchWriteRequiresData(t *testing.T) {
	mem := newMemTabular()
	mem.addSheet("Companies", []string{"name"})
	uc := gateway.New(mem)

	_, err := uc.Dispatch(context.Background(), &model.Request{
		Action:     model.ActionWrite,
		Collection: "Companies",
	})
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrDataRequired))
	gt.Equal(t, mem.appends, 0)
}

func TestDispatchUpdateRequiresRowIndex(t *testing.T) {
	mem := newMemTabular()
	mem.addSheet("Companies", []string{"name"})
	uc := gateway.New(mem)

	_, err := uc.Dispatch(context.Background(), &model.Request{
		Action:     model.ActionUpdate,
		Collection: "Companies",
		Payload:    model.Payload{Data: map[string]string{"name": "Acme"}},
	})
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrRowIndexRequired))
	gt.Equal(t, mem.updates, 0)
}

func TestDispatchWrite(t *testing.T) {
	mem := newMemTabular()
	mem.addSheet("Companies", []string{"name"})
	uc := gateway.New(mem)

	result, err := uc.Dispatch(context.Background(), &model.Request{
		Action:     model.ActionWrite,
		Collection: "Companies",
		Payload:    model.Payload{Data: map[string]string{"name": "Acme"}},
	})
	gt.NoError(t, err)

	wr := gt.Cast[*model.WriteResult](t, result)
	gt.True(t, wr.Success)
	gt.Equal(t, mem.appends, 1)
	gt.Equal(t, mem.sheets["Companies"].rows[0]["name"], "Acme")
}

func TestDispatchUpdateMergesFields(t *testing.T) {
	mem := newMemTabular()
	mem.addSheet("Companies", []string{"name", "city"},
		map[string]string{"name": "Acme", "city": "Seoul"},
	)
	uc := gateway.New(mem)

	result, err := uc.Dispatch(context.Background(), &model.Request{
		Action:     model.ActionUpdate,
		Collection: "Companies",
		Payload: model.Payload{
			Data:     map[string]string{"city": "Busan"},
			RowIndex: ptr(0),
		},
	})
	gt.NoError(t, err)

	wr := gt.Cast[*model.WriteResult](t, result)
	gt.True(t, wr.Success)
	gt.Equal(t, mem.sheets["Companies"].rows[0]["city"], "Busan")
	gt.Equal(t, mem.sheets["Companies"].rows[0]["name"], "Acme")
}

func TestDispatchDelete(t *testing.T) {
	mem := newMemTabular()
	mem.addSheet("Companies", []string{"name"},
		map[string]string{"name": "Acme"},
		map[string]string{"name": "Globex"},
	)
	uc := gateway.New(mem)

	result, err := uc.Dispatch(context.Background(), &model.Request{
		Action:     model.ActionDelete,
		Collection: "Companies",
		Payload:    model.Payload{RowIndex: ptr(0)},
	})
	gt.NoError(t, err)

	wr := gt.Cast[*model.WriteResult](t, result)
	gt.True(t, wr.Success)
	gt.A(t, mem.sheets["Companies"].rows).Length(1)
	gt.Equal(t, mem.sheets["Companies"].rows[0]["name"], "Globex")
}

func TestDispatchDeleteMissingRow(t *testing.T) {
	mem := newMemTabular()
	mem.addSheet("Companies", []string{"name"},
		map[string]string{"name": "Acme"},
	)
	uc := gateway.New(mem)

	_, err := uc.Dispatch(context.Background(), &model.Request{
		Action:     model.ActionDelete,
		Collection: "Companies",
		Payload:    model.Payload{RowIndex: ptr(5)},
	})
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrRowNotFound))
	gt.A(t, mem.sheets["Companies"].rows).Length(1)
}

func TestDispatchDeleteRequiresRowIndex(t *testing.T) {
	mem := newMemTabular()
	mem.addSheet("Companies", []string{"name"})
	uc := gateway.New(mem)

	_, err := uc.Dispatch(context.Background(), &model.Request{
		Action:     model.ActionDelete,
		Collection: "Companies",
	})
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrRowIndexRequired))
}

// fixedClock returns a gateway option pinning the clock to the given UTC
// instant.
func fixedClock(t time.Time) gateway.Option {
	return gateway.WithNow(func() time.Time { return t })
}
