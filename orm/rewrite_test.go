package orm

import (
	"database/sql"
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestRewriter(t *testing.T) {
	query := "UPDATE users \n SET user_name={0}\n WHERE \n(( id IN ( {1},{2} ) ) OR (id>{10}))\n;\n"
	args := []any{"a", 1, 2}

	testCases := []struct {
		name     string
		rewriter Rewriter
		query    string
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "question",
			rewriter: RewriteQuestion,
			query:    query,
			wantSQL:  "UPDATE users \n SET user_name=?\n WHERE \n(( id IN ( ?,? ) ) OR (id>?))\n;\n",
			wantArgs: args,
		},
		{
			name:     "dollar",
			rewriter: RewriteDollar,
			query:    query,
			wantSQL:  "UPDATE users \n SET user_name=$1\n WHERE \n(( id IN ( $2,$3 ) ) OR (id>$11))\n;\n",
			wantArgs: args,
		},
		{
			name:     "ordinal",
			rewriter: RewriteOrdinal,
			query:    query,
			wantSQL:  "UPDATE users \n SET user_name=?1\n WHERE \n(( id IN ( ?2,?3 ) ) OR (id>?11))\n;\n",
			wantArgs: args,
		},
		{
			name:     "named",
			rewriter: RewriteNamed,
			query:    "DELETE FROM users \n WHERE \n(id=@P_0)\n;\n",
			wantSQL:  "DELETE FROM users \n WHERE \n(id=@P_0)\n;\n",
			wantArgs: []any{sql.Named("P_0", "a"), sql.Named("P_1", 1), sql.Named("P_2", 2)},
		},
		{
			name:     "no placeholder",
			rewriter: RewriteDollar,
			query:    "DELETE FROM users \n WHERE \n(id IS NULL)\n;\n",
			wantSQL:  "DELETE FROM users \n WHERE \n(id IS NULL)\n;\n",
			wantArgs: args,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, res := tc.rewriter(tc.query, args)
			assert.Equal(t, tc.wantSQL, s)
			assert.Equal(t, tc.wantArgs, res)
		})
	}
}
