package bridge

import (
	"context"
	"errors"
	"fmt"

	"go-user-admin/internal/domain"
	"go-user-admin/internal/service"
)

// Backend 由 *service.UserService 实现
type Backend interface {
	List(ctx context.Context) ([]domain.UserRow, error)
	Roles(ctx context.Context) ([]domain.Role, error)
	Delete(ctx context.Context, id string) error
	Edit(ctx context.Context, in service.EditUserInput) error
	Add(ctx context.Context, in service.AddUserInput) error
}

// Local 进程内桥接，直接调用服务层
type Local struct{ svc Backend }

func NewLocal(svc Backend) *Local { return &Local{svc: svc} }

func (l *Local) Query(ctx context.Context, _ ListUsers) (QueryResult, error) {
	if err := ctx.Err(); err != nil {
		return QueryResult{}, err
	}
	rows, err := l.svc.List(ctx)
	if err != nil {
		return QueryResult{Code: 500, Message: err.Error()}, nil
	}
	return QueryResult{Code: StatusOK, Data: rows}, nil
}

func (l *Local) Execute(ctx context.Context, cmd DeleteUser) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	err := l.svc.Delete(ctx, cmd.ID)
	switch {
	case err == nil:
		return Result{OK: true}, nil
	case service.IsRefusal(err):
		return Result{Message: err.Error()}, nil
	case errors.Is(err, domain.ErrUserNotFound):
		return Result{Message: "user not found"}, nil
	default:
		return Result{}, err
	}
}

func (l *Local) Mutate(ctx context.Context, m Mutation) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var err error
	switch v := m.(type) {
	case EditUser:
		err = l.svc.Edit(ctx, service.EditUserInput{ID: v.ID, Name: v.Name, Role: v.Role, PrevRole: v.PrevRole, Password: v.Password})
	case AddUser:
		err = l.svc.Add(ctx, service.AddUserInput{ID: v.ID, Name: v.Name, Role: v.Role, Password: v.Password})
	default:
		return false, fmt.Errorf("unsupported mutation %T", m)
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (l *Local) Roles(ctx context.Context) ([]domain.Role, error) { return l.svc.Roles(ctx) }
