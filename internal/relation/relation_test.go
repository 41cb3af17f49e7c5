package relation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/relq/internal/ir"
	"github.com/roach88/relq/internal/order"
	"github.com/roach88/relq/internal/predicate"
	"github.com/roach88/relq/internal/testutil"
)

func TestProjectScenario(t *testing.T) {
	projects := newProjects()

	completed := projects.Where(Eq(ir.O("state", str("completed"))))
	assert.Equal(t, []int64{3, 4}, mustIDs(t, completed))

	first, ok, err := completed.First()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(3), testutil.ID(t, first))

	notCompleted := projects.WhereChain().Not(Eq(ir.O("state", str("completed"))))
	assert.Equal(t, []int64{1, 2}, mustIDs(t, notCompleted))

	byPriority := projects.OrderDir(order.P("priority", "desc"))
	assert.Equal(t, []int64{3, 2, 1, 4}, mustIDs(t, byPriority))

	_, err = projects.Find(num(-1))
	require.Error(t, err)
	assert.True(t, IsRecordNotFound(err))
}

func TestImmutability(t *testing.T) {
	base := newProjects()
	before := mustIDs(t, base)

	derived := map[string]*Relation{
		"where":     base.Where(Eq(ir.O("state", str("draft")))),
		"where.not": base.WhereNot(Eq(ir.O("state", str("draft")))),
		"order":     base.OrderDir(order.P("priority", "desc")),
		"offset":    base.Offset(2),
		"limit":     base.Limit(1),
		"extending": base.Extending(Inline(nil)),
		"all":       base.All(),
	}

	for name, r := range derived {
		t.Run(name, func(t *testing.T) {
			assert.NotSame(t, base, r)
			assert.Equal(t, before, mustIDs(t, base))
		})
	}
}

func TestLazyAndRecomputed(t *testing.T) {
	src := testutil.NewCountingSource(testutil.Projects())
	r := New(projectModel, src, quiet()).
		Where(Eq(ir.O("state", str("completed")))).
		OrderBy("priority").
		Limit(5)
	assert.Equal(t, 0, src.Reads(), "building does not read the source")

	n, err := r.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, src.Reads())

	src.Append(testutil.Project(5, "completed", 2))

	assert.Equal(t, []int64{4, 5, 3}, mustIDs(t, r))
	assert.Equal(t, 2, src.Reads())
}

func TestWhere_MatchesSubsequence(t *testing.T) {
	base := newProjects()
	all, err := base.Records()
	require.NoError(t, err)

	for _, state := range []string{"draft", "running", "completed", "archived"} {
		t.Run(state, func(t *testing.T) {
			var want []int64
			for _, rec := range all {
				v, err := ir.Get(rec, "state")
				require.NoError(t, err)
				if ir.Equal(v, str(state)) {
					want = append(want, testutil.ID(t, rec))
				}
			}
			got := mustIDs(t, base.Where(Eq(ir.O("state", str(state)))))
			if want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, want, got)
		})
	}
}

func TestWhere_Variants(t *testing.T) {
	base := newProjects()
	odd := func(rec ir.Record) bool {
		v, _ := rec.Attribute("id")
		return int64(v.(ir.IRInt))%2 == 1
	}

	tests := []struct {
		name string
		rel  *Relation
		want []int64
	}{
		{"empty criteria", base.Where(Criteria{}), []int64{1, 2, 3, 4}},
		{"two pairs", base.Where(Eq(ir.O("state", str("completed")), ir.O("priority", num(1)))), []int64{4}},
		{"map", base.Where(EqMap(ir.IRObject{"state": str("completed"), "priority": num(3)})), []int64{3}},
		{"func", base.Where(Func("odd", odd)), []int64{1, 3}},
		{"pairs and func", base.Where(Criteria{Eq: []ir.IRPair{ir.O("priority", num(1))}, Func: odd}), []int64{1}},
		{"chained", base.Where(Eq(ir.O("state", str("completed")))).Where(Eq(ir.O("priority", num(3)))), []int64{3}},
		{"kind mismatch never equal", base.Where(Eq(ir.O("id", str("1")))), []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mustIDs(t, tt.rel))
		})
	}
}

func TestWhereNot_IsComplement(t *testing.T) {
	base := newProjects().Where(Func("not running", func(rec ir.Record) bool {
		v, _ := rec.Attribute("state")
		return !ir.Equal(v, str("running"))
	}))

	criteria := []Criteria{
		Eq(ir.O("state", str("completed"))),
		Eq(ir.O("priority", num(1))),
		Eq(ir.O("state", str("completed")), ir.O("priority", num(1))),
	}

	for _, c := range criteria {
		t.Run(predicate.String(c.Predicate()), func(t *testing.T) {
			yes := mustIDs(t, base.Where(c))
			no := mustIDs(t, base.WhereNot(c))
			assert.ElementsMatch(t, mustIDs(t, base), append(yes, no...))
			for _, id := range yes {
				assert.NotContains(t, no, id)
			}
		})
	}
}

func TestWhereNot_NegatesOnlyFreshClause(t *testing.T) {
	base := newProjects()

	r := base.Where(Eq(ir.O("state", str("completed")))).WhereNot(Eq(ir.O("priority", num(1))))
	assert.Equal(t, []int64{3}, mustIDs(t, r))

	// NOT (state = completed AND priority = 1)
	r = base.WhereNot(Eq(ir.O("state", str("completed")), ir.O("priority", num(1))))
	assert.Equal(t, []int64{1, 2, 3}, mustIDs(t, r))

	r = base.WhereChain().Not(Criteria{})
	assert.Equal(t, []int64{1, 2, 3, 4}, mustIDs(t, r))
}

func TestOrder(t *testing.T) {
	base := newProjects()

	tests := []struct {
		name string
		rel  *Relation
		want []int64
	}{
		{"asc stable", base.OrderBy("priority"), []int64{1, 4, 2, 3}},
		{"desc stable", base.OrderDir(order.P("priority", "descending")), []int64{3, 2, 1, 4}},
		{"two keys", base.OrderBy("state").OrderDir(order.P("id", "DESC")), []int64{4, 3, 1, 2}},
		{"clause", base.Order(order.Clause{order.Desc("priority"), order.Desc("id")}), []int64{3, 2, 4, 1}},
		{"filtered then ordered", base.Where(Eq(ir.O("state", str("completed")))).OrderBy("priority"), []int64{4, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mustIDs(t, tt.rel))
		})
	}
}

func TestOrder_SequentialEqualsCombined(t *testing.T) {
	base := newProjects()
	sequential := base.OrderBy("state").OrderDir(order.P("priority", "desc"))
	combined := base.OrderDir(order.P("state", "asc"), order.P("priority", "desc"))

	assert.Equal(t, mustIDs(t, combined), mustIDs(t, sequential))
	assert.Equal(t, combined.OrderClause(), sequential.OrderClause())
}

func TestOrder_InvalidDirection(t *testing.T) {
	r := newProjects().OrderDir(order.P("priority", "sideways"))

	require.Error(t, r.Err())
	assert.True(t, IsInvalidDirection(r.Err()))

	_, err := r.Records()
	assert.True(t, IsInvalidDirection(err))
	_, err = r.Where(Eq(ir.O("id", num(1)))).Count()
	assert.True(t, IsInvalidDirection(err), "error survives further chaining")
}

func TestOrder_EmptyAttribute(t *testing.T) {
	r := newProjects().OrderDir(order.P("", "asc"))

	assert.True(t, IsInvalidArgument(r.Err()))
	assert.False(t, IsInvalidDirection(r.Err()))
}

func TestPagination(t *testing.T) {
	base := newProjects()

	tests := []struct {
		name   string
		offset *int
		limit  *int
		want   []int64
	}{
		{"none", nil, nil, []int64{1, 2, 3, 4}},
		{"window", intp(1), intp(2), []int64{2, 3}},
		{"clipped", intp(3), intp(5), []int64{4}},
		{"offset only", intp(2), nil, []int64{3, 4}},
		{"offset past end", intp(10), nil, []int64{}},
		{"limit zero", nil, intp(0), []int64{}},
		{"limit only", nil, intp(3), []int64{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := base
			if tt.offset != nil {
				r = r.Offset(*tt.offset)
			}
			if tt.limit != nil {
				r = r.Limit(*tt.limit)
			}
			assert.Equal(t, tt.want, mustIDs(t, r))
		})
	}
}

func intp(n int) *int { return &n }

func TestPagination_LastCallWins(t *testing.T) {
	r := newProjects().Offset(1).Limit(1).Offset(2).Limit(2)
	assert.Equal(t, []int64{3, 4}, mustIDs(t, r))

	offset, ok := r.OffsetValue()
	assert.True(t, ok)
	assert.Equal(t, 2, offset)
}

func TestPagination_Negative(t *testing.T) {
	r := newProjects().Offset(-1)
	assert.True(t, IsInvalidArgument(r.Err()))

	r = newProjects().Limit(-5)
	_, err := r.Count()
	assert.True(t, IsInvalidArgument(err))

	// First recorded error wins.
	r = newProjects().Offset(-1).Limit(-2)
	assert.Contains(t, r.Err().Error(), "offset")
}

func TestExceptOnly(t *testing.T) {
	base := newProjects()
	r := base.Where(Eq(ir.O("state", str("completed")))).Offset(1).Limit(1)
	require.Equal(t, []int64{4}, mustIDs(t, r))

	tests := []struct {
		name string
		rel  *Relation
		want []int64
	}{
		{"except where", r.Except(ClauseWhere), []int64{2}},
		{"except where then only where", r.Except(ClauseWhere).Only(ClauseWhere), []int64{1, 2, 3, 4}},
		{"except everything", r.Except(ClauseWhere, ClauseOffset, ClauseLimit), []int64{1, 2, 3, 4}},
		{"only where", r.Only(ClauseWhere), []int64{3, 4}},
		{"only limit", r.Only(ClauseLimit), []int64{1}},
		{"except offset", r.Except(ClauseOffset), []int64{3}},
		{"only nothing", r.Only(), []int64{1, 2, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mustIDs(t, tt.rel))
		})
	}
}

func TestExceptOnly_KeepOrderAndExtensions(t *testing.T) {
	ext := Inline(map[string]ExtensionFunc{"ping": pingFunc})
	r := newProjects().
		OrderDir(order.P("priority", "desc")).
		Extending(ext).
		Where(Eq(ir.O("state", str("completed"))))

	stripped := r.Except(ClauseWhere)
	assert.Equal(t, []int64{3, 2, 1, 4}, mustIDs(t, stripped))
	assert.True(t, stripped.Responds("ping"))

	only := r.Only(ClauseOffset)
	assert.Equal(t, []int64{3, 2, 1, 4}, mustIDs(t, only))
	assert.True(t, only.Responds("ping"))
}

func TestExceptOnly_UnknownClause(t *testing.T) {
	r := newProjects().Except("group")
	assert.True(t, IsInvalidArgument(r.Err()))

	r = newProjects().Only(ClauseWhere, "order")
	assert.True(t, IsInvalidArgument(r.Err()))

	c, err := ParseClause("LIMIT")
	require.NoError(t, err)
	assert.Equal(t, ClauseLimit, c)
}

func TestFind(t *testing.T) {
	base := newProjects()

	rec, err := base.Find(num(3))
	require.NoError(t, err)
	assert.Equal(t, int64(3), testutil.ID(t, rec))

	_, err = base.Where(Eq(ir.O("state", str("completed")))).Find(num(1))
	require.Error(t, err, "find searches after filtering")

	var re *Error
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeRecordNotFound, re.Code)
	assert.Equal(t, "Project", re.Model)
	assert.Equal(t, "id", re.Key)
	assert.Equal(t, num(1), re.ID)
	assert.Contains(t, err.Error(), "couldn't find Project with id=1")
}

func TestFind_CustomPrimaryKey(t *testing.T) {
	model := StaticModel{ModelName: "Tag", Key: "slug"}
	r := New(model, SliceSource{
		ir.IRObject{"slug": str("go"), "uses": num(3)},
		ir.IRObject{"slug": str("sql"), "uses": num(1)},
	}, quiet())

	rec, err := r.Find(str("sql"))
	require.NoError(t, err)
	uses, err := ir.Get(rec, "uses")
	require.NoError(t, err)
	assert.Equal(t, num(1), uses)

	_, err = r.Find(num(1))
	var re *Error
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "slug", re.Key)
}

func TestFind_NilModel(t *testing.T) {
	r := New(nil, SliceSource{ir.IRObject{"id": num(1)}, ir.IRObject{"id": num(2)}}, quiet())

	rec, err := r.Find(num(2))
	require.NoError(t, err)
	assert.Equal(t, int64(2), testutil.ID(t, rec))

	_, err = r.Find(num(9))
	assert.True(t, IsRecordNotFound(err))

	ok, err := r.Include(ir.IRObject{"id": num(1)})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFindBy(t *testing.T) {
	base := newProjects()

	rec, ok, err := base.FindBy(Eq(ir.O("state", str("completed"))))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(3), testutil.ID(t, rec))

	rec, ok, err = base.FindBy(Eq(ir.O("state", str("archived"))))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, rec)
}

func TestTerminals(t *testing.T) {
	r := newProjects().Where(Eq(ir.O("state", str("completed"))))

	last, ok, err := r.Last()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(4), testutil.ID(t, last))

	empty, err := r.Where(Eq(ir.O("priority", num(9)))).IsEmpty()
	require.NoError(t, err)
	assert.True(t, empty)

	_, ok, err = r.Limit(0).First()
	require.NoError(t, err)
	assert.False(t, ok)

	var seen []int64
	require.NoError(t, newProjects().Each(func(rec ir.Record) bool {
		seen = append(seen, testutil.ID(t, rec))
		return len(seen) < 2
	}))
	assert.Equal(t, []int64{1, 2}, seen)
}

type taggedRecord struct {
	ir.IRObject
	tag string
}

func (r taggedRecord) Equal(other ir.Record) bool {
	o, ok := other.(taggedRecord)
	return ok && o.tag == r.tag
}

func TestInclude(t *testing.T) {
	r := newProjects().Where(Eq(ir.O("state", str("completed"))))

	in, err := r.Include(testutil.Project(3, "whatever", 0))
	require.NoError(t, err)
	assert.True(t, in, "membership by primary key")

	in, err = r.Include(testutil.Project(1, "completed", 1))
	require.NoError(t, err)
	assert.False(t, in)

	tagged := New(projectModel, SliceSource{
		taggedRecord{IRObject: testutil.Project(1, "draft", 1), tag: "a"},
	}, quiet())
	in, err = tagged.Include(taggedRecord{IRObject: testutil.Project(2, "draft", 1), tag: "a"})
	require.NoError(t, err)
	assert.True(t, in, "Equaler overrides primary key")
}

func TestEvaluationErrors(t *testing.T) {
	base := newProjects()

	_, err := base.Where(Eq(ir.O("owner", str("ana")))).Records()
	require.Error(t, err)
	assert.True(t, IsAttributeNotFound(err))
	assert.ErrorIs(t, err, ir.ErrAttributeNotFound)

	_, err = base.OrderBy("owner").Records()
	assert.True(t, IsAttributeNotFound(err))

	mixed := New(projectModel, SliceSource{
		ir.IRObject{"id": num(1), "rank": num(1)},
		ir.IRObject{"id": num(2), "rank": str("high")},
	}, quiet())
	_, err = mixed.OrderBy("rank").Records()
	var re *Error
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeIncomparable, re.Code)

	// Filtering everything out first means no record is ever inspected.
	n, err := base.Where(Eq(ir.O("id", num(99)))).OrderBy("owner").Count()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestString(t *testing.T) {
	r := newProjects().
		Where(Eq(ir.O("state", str("completed")))).
		OrderDir(order.P("priority", "desc")).
		Limit(2).
		Offset(1)
	assert.Equal(t, `Project WHERE state = "completed" ORDER BY priority DESC LIMIT 2 OFFSET 1`, r.String())
	assert.Equal(t, "Project", newProjects().String())
}
