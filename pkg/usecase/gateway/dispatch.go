package gateway

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/kfpc0808/researchtmfax/pkg/model"
	"github.com/kfpc0808/researchtmfax/pkg/utils/logging"
)

// Dispatch routes a request to the matching operation and returns its
// result. The concrete result type depends on the action: *model.ReadResult
// for read, []model.RowView for readAll, and *model.WriteResult for write,
// update and delete. Errors carry the sentinels of pkg/model for the
// transport layer to classify.
func (u *UseCase) Dispatch(ctx context.Context, req *model.Request) (any, error) {
	if err := req.Action.Validate(); err != nil {
		return nil, goerr.Wrap(err, "unsupported action", goerr.V("action", req.Action))
	}

	exists, err := u.tabular.Exists(ctx, req.Collection)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, goerr.Wrap(model.ErrCollectionNotFound, "unknown collection",
			goerr.V("collection", req.Collection))
	}

	logging.From(ctx).Debug("dispatching request",
		"action", req.Action,
		"collection", req.Collection,
	)

	switch req.Action {
	case model.ActionRead:
		return u.read(ctx, req)
	case model.ActionReadAll:
		return u.readAll(ctx, req)
	case model.ActionWrite, model.ActionUpdate:
		return u.save(ctx, req)
	default:
		return u.delete(ctx, req)
	}
}

func (u *UseCase) read(ctx context.Context, req *model.Request) (*model.ReadResult, error) {
	snapshot, err := u.tabular.FetchAll(ctx, req.Collection)
	if err != nil {
		return nil, err
	}

	data, total := queryRows(snapshot, req.Payload.Filter, req.Payload.Page, req.Payload.Limit)
	return &model.ReadResult{Data: data, Total: total}, nil
}

func (u *UseCase) readAll(ctx context.Context, req *model.Request) ([]model.RowView, error) {
	snapshot, err := u.tabular.FetchAll(ctx, req.Collection)
	if err != nil {
		return nil, err
	}
	return allRows(snapshot), nil
}

// save handles both write and update. The business rules run before any
// mutation; a declined write returns without touching the service.
func (u *UseCase) save(ctx context.Context, req *model.Request) (*model.WriteResult, error) {
	p := &req.Payload
	if p.Data == nil {
		return nil, goerr.Wrap(model.ErrDataRequired, "missing data payload")
	}
	if req.Action == model.ActionUpdate && p.RowIndex == nil {
		return nil, goerr.Wrap(model.ErrRowIndexRequired, "missing rowIndex payload")
	}

	decline, err := u.applyContactRules(ctx, req.Action, req.Collection, p)
	if err != nil {
		return nil, err
	}
	if decline != nil {
		return decline, nil
	}

	if req.Action == model.ActionWrite {
		if err := u.tabular.Append(ctx, req.Collection, p.Data); err != nil {
			return nil, err
		}
	} else {
		if err := u.tabular.UpdateAt(ctx, req.Collection, *p.RowIndex, p.Data); err != nil {
			return nil, err
		}
	}
	return model.Saved(), nil
}

func (u *UseCase) delete(ctx context.Context, req *model.Request) (*model.WriteResult, error) {
	if req.Payload.RowIndex == nil {
		return nil, goerr.Wrap(model.ErrRowIndexRequired, "missing rowIndex payload")
	}

	if err := u.tabular.DeleteAt(ctx, req.Collection, *req.Payload.RowIndex); err != nil {
		return nil, err
	}
	return model.Saved(), nil
}
