package orm

import (
	"context"
	"database/sql"
	"errors"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/coderi421/sqlraw/orm/internal/errs"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func newMockDB(t *testing.T, opts ...DBOption) (*DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	db, err := OpenDB(mockDB, opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db, mock
}

func TestExecutor_Exec(t *testing.T) {
	testCases := []struct {
		name     string
		opts     []DBOption
		mockExec func(mock sqlmock.Sqlmock)
		exec     func(db *DB) (int64, error)
		wantRows int64
		wantErr  error
	}{
		{
			name: "delete",
			mockExec: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("DELETE FROM users \n WHERE \n(id={0})\n;\n").
					WithArgs(1).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			exec: func(db *DB) (int64, error) {
				return NewDeleter[User](db).Where(C("Id").EQ(1)).Exec(context.Background())
			},
			wantRows: 1,
		},
		{
			name: "question rewriter",
			opts: []DBOption{DBWithRewriter(RewriteQuestion)},
			mockExec: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("UPDATE users \n SET user_name=?\n WHERE \n( id IN ( ?,? ) )\n;\n").
					WithArgs("Tom", 1, 2).
					WillReturnResult(sqlmock.NewResult(0, 2))
			},
			exec: func(db *DB) (int64, error) {
				return NewUpdater[User](db).Set("Username", "Tom").
					Where(C("Id").In(1, 2)).Exec(context.Background())
			},
			wantRows: 2,
		},
		{
			name: "batch",
			opts: []DBOption{DBWithRewriter(RewriteDollar)},
			mockExec: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("DELETE FROM users \n WHERE \n(id=$1)\n;\n" +
					"UPDATE users \n SET user_name=$2\n WHERE \n(id=$3)\n;\n").
					WithArgs(1, "x", 2).
					WillReturnResult(sqlmock.NewResult(0, 5))
			},
			exec: func(db *DB) (int64, error) {
				b := NewBuffer(db)
				Delete[User](b).Where(C("Id").EQ(1))
				Update[User](b).Set("Username", "x").Where(C("Id").EQ(2))
				return b.Exec(context.Background())
			},
			wantRows: 5,
		},
		{
			name: "mysql error",
			mockExec: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("DELETE FROM users \n WHERE \n(id={0})\n;\n").
					WithArgs(1).
					WillReturnError(&mysql.MySQLError{Number: 1451, Message: "foreign key constraint fails"})
			},
			exec: func(db *DB) (int64, error) {
				return NewDeleter[User](db).Where(C("Id").EQ(1)).Exec(context.Background())
			},
			wantErr: &mysql.MySQLError{Number: 1451, Message: "foreign key constraint fails"},
		},
		{
			name: "postgres error",
			mockExec: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("DELETE FROM users \n WHERE \n(id={0})\n;\n").
					WithArgs(1).
					WillReturnError(&pgconn.PgError{Code: "23503", Message: "violates foreign key constraint"})
			},
			exec: func(db *DB) (int64, error) {
				return NewDeleter[User](db).Where(C("Id").EQ(1)).Exec(context.Background())
			},
			wantErr: &pgconn.PgError{Code: "23503", Message: "violates foreign key constraint"},
		},
		{
			name: "rows affected error",
			mockExec: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("DELETE FROM users \n WHERE \n(id={0})\n;\n").
					WithArgs(1).
					WillReturnResult(sqlmock.NewErrorResult(errors.New("not supported")))
			},
			exec: func(db *DB) (int64, error) {
				return NewDeleter[User](db).Where(C("Id").EQ(1)).Exec(context.Background())
			},
			wantErr: errors.New("not supported"),
		},
		{
			name:     "no where",
			mockExec: func(mock sqlmock.Sqlmock) {},
			exec: func(db *DB) (int64, error) {
				return NewDeleter[User](db).Buffer().Exec(context.Background())
			},
			wantErr: errs.NewErrInvalidState("Exec", "Header"),
		},
		{
			name:     "empty buffer",
			mockExec: func(mock sqlmock.Sqlmock) {},
			exec: func(db *DB) (int64, error) {
				return NewBuffer(db).Exec(context.Background())
			},
			wantErr: errs.NewErrInvalidState("Exec", "Empty"),
		},
		{
			name:     "build error",
			mockExec: func(mock sqlmock.Sqlmock) {},
			exec: func(db *DB) (int64, error) {
				return NewDeleter[User](db).Where(C("Invalid").EQ(1)).Exec(context.Background())
			},
			wantErr: errs.NewErrUnknownField("Invalid"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMockDB(t, tc.opts...)
			tc.mockExec(mock)

			n, err := tc.exec(db)
			assert.Equal(t, tc.wantErr, err)
			assert.Equal(t, tc.wantRows, n)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestExecutor_ExecSealsBuffer(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("DELETE FROM users \n WHERE \n(id={0})\n;\n").
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	e := NewDeleter[User](db).Where(C("Id").EQ(1))
	_, err := e.Exec(context.Background())
	require.NoError(t, err)

	q, err := e.Build()
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM users \n WHERE \n(id={0})\n;\n", q.SQL)

	_, err = e.Exec(context.Background())
	assert.Equal(t, errs.NewErrInvalidState("Exec", "Executed"), err)
	assert.NoError(t, mock.ExpectationsWereMet())

	e = NewDeleter[User](db).Where(C("Id").EQ(1))
	_, _ = e.Exec(context.Background())
	e.Where(C("Id").EQ(2))
	assert.ErrorIs(t, e.Buffer().Err(), ErrInvalidBuilderState)
}

func TestExecutor_ExecCanceled(t *testing.T) {
	db, mock := newMockDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := NewDeleter[User](db).Where(C("Id").EQ(1))
	_, err := e.Exec(ctx)
	assert.Equal(t, context.Canceled, err)
	assert.NoError(t, mock.ExpectationsWereMet())

	// 取消不影响 Buffer，换一个 ctx 仍然可以执行
	assert.NoError(t, e.Buffer().Err())
	mock.ExpectExec("DELETE FROM users \n WHERE \n(id={0})\n;\n").
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	n, err := e.Exec(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutor_ExecAsync(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("UPDATE users \n SET id=id+({0})\n WHERE \n(id>{1})\n;\n").
		WithArgs(1, 10).
		WillDelayFor(10 * time.Millisecond).
		WillReturnResult(sqlmock.NewResult(0, 4))

	e := NewUpdater[User](db).Inc("Id", 1).Where(C("Id").GT(10))
	ch := e.ExecAsync(context.Background())
	// 调用返回的时候 Buffer 已经封存
	e.Where(C("Id").LT(100))
	assert.ErrorIs(t, e.Buffer().Err(), ErrInvalidBuilderState)

	res := <-ch
	assert.Equal(t, ExecResult{RowsAffected: 4}, res)
	_, ok := <-ch
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutor_ExecAsyncErrors(t *testing.T) {
	db, mock := newMockDB(t)

	res := <-NewDeleter[User](db).Buffer().ExecAsync(context.Background())
	assert.Equal(t, errs.NewErrInvalidState("Exec", "Header"), res.Err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := NewDeleter[User](db).Where(C("Id").EQ(1))
	res = <-e.ExecAsync(ctx)
	assert.Equal(t, ExecResult{Err: context.Canceled}, res)
	assert.NoError(t, mock.ExpectationsWereMet())

	// 和 Exec 一样，取消不影响 Buffer
	assert.NoError(t, e.Buffer().Err())
	mock.ExpectExec("DELETE FROM users \n WHERE \n(id={0})\n;\n").
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	res = <-e.ExecAsync(context.Background())
	assert.Equal(t, ExecResult{RowsAffected: 1}, res)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutor_Middlewares(t *testing.T) {
	var logs []string
	var qcs []*QueryContext
	mdl := func(name string) Middleware {
		return func(next Handler) Handler {
			return func(ctx context.Context, qc *QueryContext) *QueryResult {
				logs = append(logs, name+" before")
				qcs = append(qcs, qc)
				res := next(ctx, qc)
				logs = append(logs, name+" after")
				return res
			}
		}
	}

	db, mock := newMockDB(t,
		DBWithMiddlewares(mdl("first"), mdl("second")),
		DBWithRewriter(RewriteQuestion))
	mock.ExpectExec("DELETE FROM users \n WHERE \n(id=?)\n;\n").
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	e := NewDeleter[User](db).Where(C("Id").EQ(1))
	_, err := e.Exec(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"first before", "second before", "second after", "first after"}, logs)
	require.Len(t, qcs, 2)
	assert.Same(t, qcs[0], qcs[1])
	qc := qcs[0]
	assert.Equal(t, "DELETE", qc.Type)
	assert.Equal(t, e.Buffer().ID(), qc.SessionID)
	assert.Same(t, e.Buffer(), qc.Builder)
	// 中间件看到的是方言的 SQL，改写发生在最后
	assert.Equal(t, &Query{
		SQL:  "DELETE FROM users \n WHERE \n(id={0})\n;\n",
		Args: []any{1},
	}, qc.Query)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutor_MiddlewareShortCircuit(t *testing.T) {
	denied := errors.New("denied")
	db, mock := newMockDB(t, DBWithMiddlewares(func(next Handler) Handler {
		return func(ctx context.Context, qc *QueryContext) *QueryResult {
			if qc.Type == "BATCH" {
				return &QueryResult{Err: denied}
			}
			return next(ctx, qc)
		}
	}))

	b := NewBuffer(db)
	Delete[User](b).Where(C("Id").EQ(1))
	Update[User](b).Set("Email", "x").Where(C("Id").EQ(2))
	_, err := b.Exec(context.Background())
	assert.Equal(t, denied, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutor_NoDatabase(t *testing.T) {
	db := MustNewDB()
	_, err := NewDeleter[User](db).Where(C("Id").EQ(1)).Exec(context.Background())
	assert.Equal(t, ErrNoDatabase, err)

	_, err = db.BeginTx(context.Background(), nil)
	assert.Equal(t, ErrNoDatabase, err)
	assert.NoError(t, db.Close())
}

func TestTx_Exec(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM users \n WHERE \n(id={0})\n;\n").
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTx(context.Background(), &sql.TxOptions{})
	require.NoError(t, err)
	n, err := NewDeleter[User](tx).Where(C("Id").EQ(1)).Exec(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, tx.Commit())
	assert.NoError(t, tx.RollbackIfNotCommit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTx_Rollback(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users \n SET email={0}\n WHERE \n(id={1})\n;\n").
		WithArgs("x", 1).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	_, err = NewUpdater[User](tx).Set("Email", "x").Where(C("Id").EQ(1)).Exec(context.Background())
	var me *mysql.MySQLError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, uint16(1062), me.Number)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}
