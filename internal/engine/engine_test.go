package engine_test

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/leengari/recordstore/internal/domain/data"
	dberrors "github.com/leengari/recordstore/internal/domain/errors"
	"github.com/leengari/recordstore/internal/domain/schema"
	"github.com/leengari/recordstore/internal/engine"
	"github.com/leengari/recordstore/internal/testutil"
)

func TestInsertRejectsDuplicatePrimaryKey(t *testing.T) {
	db := testutil.CreatePeopleDatabase(t)

	err := db.Insert(data.Record{"id": data.Integer(3), "name": data.Text("Imposter")})

	var dup *dberrors.DuplicatePrimaryKeyError
	assert.Assert(t, errors.As(err, &dup), "got %v", err)
	assert.Equal(t, dup.Position, 2)
	testutil.AssertRecordCount(t, db.Count(), 5, "after duplicate insert")
	testutil.AssertConsistent(t, db, "after duplicate insert")
}

func TestInsertRequiresPrimaryKeyValue(t *testing.T) {
	db := testutil.CreatePeopleDatabase(t)

	err := db.Insert(data.Record{"name": data.Text("Nobody")})

	var missing *dberrors.MissingKeyValueError
	assert.Assert(t, errors.As(err, &missing), "got %v", err)
	assert.Equal(t, missing.Column, "id")
	testutil.AssertRecordCount(t, db.Count(), 5, "after keyless insert")
}

func TestInsertValidation(t *testing.T) {
	tests := []struct {
		name    string
		record  data.Record
		wantErr interface{}
	}{
		{
			name:    "unknown field",
			record:  data.Record{"id": data.Integer(9), "nickname": data.Text("x")},
			wantErr: &dberrors.UnknownFieldError{},
		},
		{
			name:    "wrong type",
			record:  data.Record{"id": data.Integer(9), "name": data.Integer(42)},
			wantErr: &dberrors.TypeMismatchError{},
		},
		{
			name:    "float for integer key",
			record:  data.Record{"id": data.Float(9)},
			wantErr: &dberrors.TypeMismatchError{},
		},
		{
			name:    "untyped value",
			record:  data.Record{"id": data.Integer(9), "city": {}},
			wantErr: &dberrors.TypeMismatchError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.CreatePeopleDatabase(t)
			before := db.Records()

			err := db.Insert(tt.record)
			testutil.AssertError(t, err, tt.name)

			switch tt.wantErr.(type) {
			case *dberrors.UnknownFieldError:
				var target *dberrors.UnknownFieldError
				assert.Assert(t, errors.As(err, &target), "got %v", err)
			case *dberrors.TypeMismatchError:
				var target *dberrors.TypeMismatchError
				assert.Assert(t, errors.As(err, &target), "got %v", err)
			}
			testutil.AssertSameRecords(t, db.Records(), before, tt.name)
			testutil.AssertConsistent(t, db, tt.name)
		})
	}
}

func TestInsertRejectsNonFiniteFloats(t *testing.T) {
	db := engine.New("readings")
	testutil.AssertNoError(t, db.AddColumn("value", schema.ColumnTypeFloat, false), "add value")

	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		err := db.Insert(data.Record{"value": data.Float(f)})
		var mismatch *dberrors.TypeMismatchError
		assert.Assert(t, errors.As(err, &mismatch), "%v: got %v", f, err)
		assert.Equal(t, mismatch.Column, "value")
	}
	assert.Equal(t, db.Count(), 0)

	testutil.AssertNoError(t, db.Insert(data.Record{"value": data.Float(math.MaxFloat64)}), "insert max float")
	assert.Equal(t, db.Count(), 1)
}

func TestUpdateRejectsInfinity(t *testing.T) {
	db := engine.New("readings")
	testutil.AssertNoError(t, db.AddColumn("id", schema.ColumnTypeInteger, true), "add id")
	testutil.AssertNoError(t, db.AddColumn("value", schema.ColumnTypeFloat, false), "add value")
	testutil.AssertNoError(t, db.Insert(data.Record{"id": data.Integer(1), "value": data.Float(2.5)}), "insert")

	err := db.Update(data.Integer(1), data.Record{"value": data.Float(math.Inf(1))})
	var mismatch *dberrors.TypeMismatchError
	assert.Assert(t, errors.As(err, &mismatch), "got %v", err)

	got, found := db.Get(data.Integer(1))
	assert.Assert(t, found)
	assert.Equal(t, got["value"], data.Float(2.5))
}

func TestInsertCopiesCallerRecord(t *testing.T) {
	db := testutil.CreatePeopleDatabase(t)
	rec := data.Record{"id": data.Integer(6), "name": data.Text("Fay")}
	testutil.AssertNoError(t, db.Insert(rec), "insert")

	rec["name"] = data.Text("Mutated")

	got, found := db.Get(data.Integer(6))
	assert.Assert(t, found)
	assert.Equal(t, got["name"], data.Text("Fay"))
}

func TestSearchReturnsCopies(t *testing.T) {
	db := testutil.CreatePeopleDatabase(t)

	results, err := db.Search("name", data.Text("Ann"), false)
	testutil.AssertNoError(t, err, "search")
	testutil.AssertRecordCount(t, len(results), 1, "search Ann")

	results[0]["name"] = data.Text("Changed")

	again, _ := db.Search("name", data.Text("Ann"), false)
	testutil.AssertRecordCount(t, len(again), 1, "search Ann again")
	testutil.AssertConsistent(t, db, "after caller mutation")
}

func TestSearchUnknownField(t *testing.T) {
	db := testutil.CreatePeopleDatabase(t)

	_, err := db.Search("nickname", data.Text("x"), false)
	var unknown *dberrors.UnknownFieldError
	assert.Assert(t, errors.As(err, &unknown), "got %v", err)
	assert.Equal(t, unknown.Field, "nickname")
}

func TestExactSearchWithOtherTypeMatchesNothing(t *testing.T) {
	db := testutil.CreatePeopleDatabase(t)

	results, err := db.Search("id", data.Float(1), false)
	testutil.AssertNoError(t, err, "search")
	testutil.AssertRecordCount(t, len(results), 0, "float needle on integer key")

	results, err = db.Search("active", data.Text("true"), false)
	testutil.AssertNoError(t, err, "search")
	testutil.AssertRecordCount(t, len(results), 0, "text needle on boolean field")
}

func TestExactSearchOnNonKeyField(t *testing.T) {
	db := testutil.CreatePeopleDatabase(t)

	positions, err := db.FindPositions("active", data.Boolean(true), false)
	testutil.AssertNoError(t, err, "find")
	assert.DeepEqual(t, positions, []int{0, 2, 4})
}

func TestRenumberingAfterBatchRemove(t *testing.T) {
	// positions 0..4; 1 and 3 are the targets
	db := testutil.CreateNotesDatabase(t, "keep zero", "drop target", "keep two", "drop target", "keep four")

	removed, err := db.Remove("body", data.Text("target"), true)
	testutil.AssertNoError(t, err, "remove")
	assert.Equal(t, removed, 2)
	testutil.AssertRecordCount(t, db.Count(), 3, "after remove")

	// surviving originals 0, 2, 4 now sit at 0, 1, 2
	for newPos, stars := range []int64{0, 2, 4} {
		positions, err := db.FindPositions("stars", data.Integer(stars), false)
		testutil.AssertNoError(t, err, "find stars")
		assert.DeepEqual(t, positions, []int{newPos})
	}
	positions, _ := db.FindPositions("body", data.Text("keep"), true)
	assert.DeepEqual(t, positions, []int{0, 1, 2})

	gone, _ := db.FindPositions("body", data.Text("drop"), true)
	assert.Equal(t, len(gone), 0)

	testutil.AssertConsistent(t, db, "after renumbering")
	testutil.AssertExactLookups(t, db, "after renumbering")
}

func TestTokenPartialMatch(t *testing.T) {
	db := testutil.CreateNotesDatabase(t, "The Quick Brown Fox is fast")

	tests := []struct {
		needle string
		want   int
	}{
		{"qui", 1},
		{"th", 1},
		{"FOX", 1},
		{"xx", 0},
		{"is", 0},
	}
	for _, tt := range tests {
		t.Run(tt.needle, func(t *testing.T) {
			results, err := db.Search("body", data.Text(tt.needle), true)
			testutil.AssertNoError(t, err, "search")
			testutil.AssertRecordCount(t, len(results), tt.want, tt.needle)
		})
	}

	// the whole value is still an exact match
	results, _ := db.Search("body", data.Text("The Quick Brown Fox is fast"), false)
	testutil.AssertRecordCount(t, len(results), 1, "exact")
}

func TestAnyFieldPartialUnion(t *testing.T) {
	db := testutil.CreatePeopleDatabase(t)

	results, err := db.Search(engine.AnyField, data.Text("ann"), true)
	testutil.AssertNoError(t, err, "any-field search")
	testutil.AssertRecordCount(t, len(results), 2, "ann anywhere")
	assert.DeepEqual(t, testutil.Column(results, "name"), []interface{}{"Ann", "Bob"})
}

func TestAnyFieldExact(t *testing.T) {
	db := testutil.CreatePeopleDatabase(t)

	results, err := db.Search(engine.AnyField, data.Integer(4), false)
	testutil.AssertNoError(t, err, "any-field search")
	assert.DeepEqual(t, testutil.Column(results, "name"), []interface{}{"Dee"})
}

func TestPartialMatchOnTextPrimaryKey(t *testing.T) {
	db := engine.New("tags")
	testutil.AssertNoError(t, db.AddColumn("tag", schema.ColumnTypeText, true), "add tag")
	testutil.AssertNoError(t, db.Insert(data.Record{"tag": data.Text("alpha beta")}), "insert")

	results, err := db.Search("tag", data.Text("alp"), true)
	testutil.AssertNoError(t, err, "search")
	testutil.AssertRecordCount(t, len(results), 1, "partial on key")

	results, _ = db.Search("tag", data.Text("alp"), false)
	testutil.AssertRecordCount(t, len(results), 0, "exact on key")
}

func TestRemoveByPrimaryKeyCompactsIntegerKeys(t *testing.T) {
	db := testutil.CreatePeopleDatabase(t)

	removed, err := db.Remove("id", data.Integer(3), false)
	testutil.AssertNoError(t, err, "remove")
	assert.Equal(t, removed, 1)

	records := db.Records()
	assert.DeepEqual(t, testutil.Column(records, "id"), []interface{}{int64(1), int64(2), int64(3), int64(4)})
	assert.DeepEqual(t, testutil.Column(records, "name"), []interface{}{"Ann", "Bob", "Dee", "Eve"})

	eve, found := db.Get(data.Integer(4))
	assert.Assert(t, found)
	assert.Equal(t, eve["name"], data.Text("Eve"))
	_, found = db.Get(data.Integer(5))
	assert.Assert(t, !found)

	testutil.AssertConsistent(t, db, "after compaction")
}

func TestRemoveByOtherFieldCompactsNumericKeys(t *testing.T) {
	db := testutil.CreatePeopleDatabase(t)

	removed, err := db.Remove("city", data.Text("Oslo"), false)
	testutil.AssertNoError(t, err, "remove")
	assert.Equal(t, removed, 2)

	records := db.Records()
	assert.DeepEqual(t, testutil.Column(records, "id"), []interface{}{int64(1), int64(2), int64(3)})
	assert.DeepEqual(t, testutil.Column(records, "name"), []interface{}{"Bob", "Cid", "Eve"})
	testutil.AssertConsistent(t, db, "after compaction")
}

func TestCompactionSortsByKey(t *testing.T) {
	db := engine.New("sparse")
	testutil.AssertNoError(t, db.AddColumn("id", schema.ColumnTypeInteger, true), "add id")
	testutil.AssertNoError(t, db.AddColumn("label", schema.ColumnTypeText, false), "add label")
	for _, id := range []int64{50, 30, 10, 40} {
		err := db.Insert(data.Record{"id": data.Integer(id), "label": data.Text(fmt.Sprintf("item-%d", id))})
		testutil.AssertNoError(t, err, "insert")
	}

	_, err := db.Remove("id", data.Integer(30), false)
	testutil.AssertNoError(t, err, "remove")

	records := db.Records()
	assert.DeepEqual(t, testutil.Column(records, "label"), []interface{}{"item-10", "item-40", "item-50"})
	assert.DeepEqual(t, testutil.Column(records, "id"), []interface{}{int64(1), int64(2), int64(3)})
	testutil.AssertConsistent(t, db, "after compaction")
}

func TestFloatKeyCompaction(t *testing.T) {
	db := engine.New("measures")
	testutil.AssertNoError(t, db.AddColumn("k", schema.ColumnTypeFloat, true), "add k")
	for _, k := range []float64{10.5, 2.5, 7} {
		testutil.AssertNoError(t, db.Insert(data.Record{"k": data.Float(k)}), "insert")
	}

	_, err := db.Remove("k", data.Float(2.5), false)
	testutil.AssertNoError(t, err, "remove")

	assert.DeepEqual(t, testutil.Column(db.Records(), "k"), []interface{}{float64(1), float64(2)})
	testutil.AssertConsistent(t, db, "after float compaction")
}

func TestTextKeyIsNotCompacted(t *testing.T) {
	db := engine.New("codes")
	testutil.AssertNoError(t, db.AddColumn("code", schema.ColumnTypeText, true), "add code")
	for _, c := range []string{"c", "a", "b"} {
		testutil.AssertNoError(t, db.Insert(data.Record{"code": data.Text(c)}), "insert")
	}

	removed, err := db.Remove("code", data.Text("a"), false)
	testutil.AssertNoError(t, err, "remove")
	assert.Equal(t, removed, 1)
	assert.DeepEqual(t, testutil.Column(db.Records(), "code"), []interface{}{"c", "b"})
	testutil.AssertConsistent(t, db, "after text-key remove")
}

func TestRemoveWithoutMatchChangesNothing(t *testing.T) {
	db := testutil.CreatePeopleDatabase(t)
	version := db.Version()

	removed, err := db.Remove(engine.AnyField, data.Text("zzz"), true)
	testutil.AssertNoError(t, err, "remove")
	assert.Equal(t, removed, 0)
	assert.Equal(t, db.Version(), version)
	testutil.AssertRecordCount(t, db.Count(), 5, "after no-op remove")
}

func TestRemoveUnknownField(t *testing.T) {
	db := testutil.CreatePeopleDatabase(t)

	_, err := db.Remove("nickname", data.Text("x"), false)
	var unknown *dberrors.UnknownFieldError
	assert.Assert(t, errors.As(err, &unknown), "got %v", err)
	testutil.AssertRecordCount(t, db.Count(), 5, "after failed remove")
}

func TestRemoveAnyFieldPartial(t *testing.T) {
	db := testutil.CreatePeopleDatabase(t)

	removed, err := db.Remove(engine.AnyField, data.Text("ann"), true)
	testutil.AssertNoError(t, err, "remove")
	assert.Equal(t, removed, 2)
	assert.DeepEqual(t, testutil.Column(db.Records(), "name"), []interface{}{"Cid", "Dee", "Eve"})
	testutil.AssertConsistent(t, db, "after any-field remove")
}

func TestUpdateMergesAndReindexes(t *testing.T) {
	db := testutil.CreatePeopleDatabase(t)

	err := db.Update(data.Integer(2), data.Record{"city": data.Text("Stavanger")})
	testutil.AssertNoError(t, err, "update")

	bob, found := db.Get(data.Integer(2))
	assert.Assert(t, found)
	assert.Equal(t, bob["name"], data.Text("Bob"))
	assert.Equal(t, bob["city"], data.Text("Stavanger"))

	old, _ := db.Search("city", data.Text("arbor"), true)
	testutil.AssertRecordCount(t, len(old), 0, "old city tokens")
	fresh, _ := db.Search("city", data.Text("stav"), true)
	testutil.AssertRecordCount(t, len(fresh), 1, "new city tokens")

	testutil.AssertConsistent(t, db, "after update")
}

func TestUpdateCanRenameKey(t *testing.T) {
	db := testutil.CreatePeopleDatabase(t)

	err := db.Update(data.Integer(2), data.Record{"id": data.Integer(20)})
	testutil.AssertNoError(t, err, "update")

	_, found := db.Get(data.Integer(2))
	assert.Assert(t, !found)
	bob, found := db.Get(data.Integer(20))
	assert.Assert(t, found)
	assert.Equal(t, bob["name"], data.Text("Bob"))
	testutil.AssertConsistent(t, db, "after key rename")
}

func TestUpdateErrorsLeaveStateUntouched(t *testing.T) {
	tests := []struct {
		name  string
		key   data.Value
		patch data.Record
		check func(t *testing.T, err error)
	}{
		{
			name:  "missing record",
			key:   data.Integer(99),
			patch: data.Record{"name": data.Text("x")},
			check: func(t *testing.T, err error) {
				var target *dberrors.RecordNotFoundError
				assert.Assert(t, errors.As(err, &target), "got %v", err)
			},
		},
		{
			name:  "unknown field",
			key:   data.Integer(1),
			patch: data.Record{"nickname": data.Text("x")},
			check: func(t *testing.T, err error) {
				var target *dberrors.UnknownFieldError
				assert.Assert(t, errors.As(err, &target), "got %v", err)
			},
		},
		{
			name:  "type mismatch",
			key:   data.Integer(1),
			patch: data.Record{"active": data.Text("yes")},
			check: func(t *testing.T, err error) {
				var target *dberrors.TypeMismatchError
				assert.Assert(t, errors.As(err, &target), "got %v", err)
			},
		},
		{
			name:  "key collision",
			key:   data.Integer(1),
			patch: data.Record{"id": data.Integer(2)},
			check: func(t *testing.T, err error) {
				var target *dberrors.DuplicatePrimaryKeyError
				assert.Assert(t, errors.As(err, &target), "got %v", err)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.CreatePeopleDatabase(t)
			before := db.Records()

			err := db.Update(tt.key, tt.patch)
			tt.check(t, err)
			testutil.AssertSameRecords(t, db.Records(), before, tt.name)
			testutil.AssertConsistent(t, db, tt.name)
		})
	}
}

func TestUpdateWithoutPrimaryKey(t *testing.T) {
	db := testutil.CreateNotesDatabase(t, "hello world")

	err := db.Update(data.Text("hello world"), data.Record{"stars": data.Integer(5)})
	var target *dberrors.NoPrimaryKeyError
	assert.Assert(t, errors.As(err, &target), "got %v", err)
}

func TestClearIsIdempotent(t *testing.T) {
	db := testutil.CreatePeopleDatabase(t)

	for i := 0; i < 2; i++ {
		db.Clear()
		testutil.AssertRecordCount(t, db.Count(), 0, "after clear")

		for _, field := range []string{"id", "name", engine.AnyField} {
			results, err := db.Search(field, data.Text("ann"), true)
			testutil.AssertNoError(t, err, "search")
			testutil.AssertRecordCount(t, len(results), 0, "search "+field)
		}
		_, found := db.Get(data.Integer(1))
		assert.Assert(t, !found)
		testutil.AssertConsistent(t, db, "after clear")
	}

	assert.DeepEqual(t, db.Schema().ColumnNames(), []string{"id", "name", "city", "active"})
	testutil.AssertNoError(t, db.Insert(data.Record{"id": data.Integer(1)}), "insert after clear")
}

func TestAddColumnErrors(t *testing.T) {
	db := testutil.CreatePeopleDatabase(t)

	err := db.AddColumn("code", schema.ColumnTypeText, true)
	var dup *dberrors.DuplicatePrimaryKeyError
	assert.Assert(t, errors.As(err, &dup), "got %v", err)
	assert.Equal(t, dup.Existing, "id")

	err = db.AddColumn("name", schema.ColumnTypeText, false)
	var dupCol *dberrors.DuplicateColumnError
	assert.Assert(t, errors.As(err, &dupCol), "got %v", err)

	err = db.AddColumn("", schema.ColumnTypeText, false)
	var invalid *dberrors.InvalidColumnError
	assert.Assert(t, errors.As(err, &invalid), "got %v", err)

	err = db.AddColumn(engine.AnyField, schema.ColumnTypeText, false)
	assert.Assert(t, errors.As(err, &invalid), "got %v", err)

	assert.Equal(t, len(db.Schema().Columns), 4)
}

func TestAddPrimaryKeyAfterDataExists(t *testing.T) {
	db := testutil.CreateNotesDatabase(t, "first note", "second note")

	testutil.AssertNoError(t, db.AddColumn("id", schema.ColumnTypeInteger, true), "add key")
	testutil.AssertConsistent(t, db, "after late key")

	err := db.Insert(data.Record{"body": data.Text("third note")})
	var missing *dberrors.MissingKeyValueError
	assert.Assert(t, errors.As(err, &missing), "got %v", err)

	testutil.AssertNoError(t, db.Insert(data.Record{"id": data.Integer(1), "body": data.Text("third note")}), "insert")
	results, _ := db.Search("body", data.Text("note"), true)
	testutil.AssertRecordCount(t, len(results), 3, "notes")
}

func TestRebuildAllIndexes(t *testing.T) {
	db := testutil.CreatePeopleDatabase(t)
	db.RebuildAllIndexes()
	testutil.AssertConsistent(t, db, "after rebuild")
	testutil.AssertExactLookups(t, db, "after rebuild")
}

func TestConcurrentReadersAndWriters(t *testing.T) {
	db := testutil.CreatePeopleDatabase(t)
	var wg sync.WaitGroup

	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				city := "Oslo"
				if i%2 == 1 {
					city = "Bergen"
				}
				_ = db.Insert(data.Record{
					"id":   data.Integer(int64(1000*(w+1) + i)),
					"name": data.Text(fmt.Sprintf("writer %d row %d", w, i)),
					"city": data.Text(city),
				})
			}
		}(w)
	}

	for r := 0; r < 2; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				if _, err := db.Remove("city", data.Text("bergen"), true); err != nil {
					t.Errorf("remove: %v", err)
					return
				}
			}
		}()
	}

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				results, err := db.Search("city", data.Text("Oslo"), false)
				if err != nil {
					t.Errorf("search: %v", err)
					return
				}
				for _, rec := range results {
					if rec["city"] != data.Text("Oslo") {
						t.Errorf("search Oslo returned %v", rec)
						return
					}
				}
				_, _ = db.Search(engine.AnyField, data.Text("writer"), true)
				_ = db.Count()
			}
		}()
	}

	wg.Wait()

	_, err := db.Remove("city", data.Text("Bergen"), false)
	testutil.AssertNoError(t, err, "final remove")
	results, err := db.Search("city", data.Text("Bergen"), false)
	testutil.AssertNoError(t, err, "search Bergen")
	testutil.AssertRecordCount(t, len(results), 0, "Bergen after final remove")

	oslo, err := db.Search("city", data.Text("Oslo"), false)
	testutil.AssertNoError(t, err, "search Oslo")
	testutil.AssertRecordCount(t, len(oslo), 2+4*25, "Oslo survivors")

	testutil.AssertConsistent(t, db, "after concurrent mutations")
	testutil.AssertExactLookups(t, db, "after concurrent mutations")
}

func TestRandomMutationsKeepIndexesConsistent(t *testing.T) {
	db := testutil.CreatePeopleDatabase(t)
	rng := rand.New(rand.NewSource(42))
	cities := []string{"Oslo", "Ann Arbor", "Bergen", "New York City", "Tromsø"}
	nextID := int64(6)

	for step := 0; step < 300; step++ {
		context := fmt.Sprintf("step %d", step)
		switch rng.Intn(5) {
		case 0, 1:
			id := nextID
			if rng.Intn(4) == 0 {
				id = int64(rng.Intn(int(nextID)) + 1) // likely duplicate
			} else {
				nextID++
			}
			_ = db.Insert(data.Record{
				"id":     data.Integer(id),
				"name":   data.Text(fmt.Sprintf("person %d", id)),
				"city":   data.Text(cities[rng.Intn(len(cities))]),
				"active": data.Boolean(rng.Intn(2) == 0),
			})
		case 2:
			key := data.Integer(int64(rng.Intn(int(nextID)) + 1))
			_ = db.Update(key, data.Record{"city": data.Text(cities[rng.Intn(len(cities))])})
		case 3:
			_, err := db.Remove("city", data.Text(cities[rng.Intn(len(cities))]), rng.Intn(2) == 0)
			testutil.AssertNoError(t, err, context)
		case 4:
			_, err := db.Remove(engine.AnyField, data.Boolean(true), false)
			testutil.AssertNoError(t, err, context)
			nextID = int64(db.Count()) + 1
		}

		testutil.AssertConsistent(t, db, context)
		testutil.AssertExactLookups(t, db, context)
	}
}

func TestFromSnapshotReplaysRecords(t *testing.T) {
	src := testutil.CreatePeopleDatabase(t)
	snap := src.Snapshot()

	db, err := engine.FromSnapshot(snap)
	testutil.AssertNoError(t, err, "from snapshot")

	assert.Equal(t, db.Name(), "people")
	assert.Equal(t, db.PrimaryKey(), "id")
	testutil.AssertSameRecords(t, db.Records(), src.Records(), "loaded")
	assert.Assert(t, !db.Dirty())
	testutil.AssertConsistent(t, db, "loaded")

	results, _ := db.Search(engine.AnyField, data.Text("ann"), true)
	testutil.AssertRecordCount(t, len(results), 2, "loaded any-field search")
}

func TestFromSnapshotRejectsDuplicateKeys(t *testing.T) {
	snap := data.Snapshot{
		Name:       "broken",
		Columns:    []schema.Column{{Name: "id", Type: schema.ColumnTypeInteger, PrimaryKey: true}},
		PrimaryKey: "id",
		Records: []data.Record{
			{"id": data.Integer(1)},
			{"id": data.Integer(1)},
		},
	}

	_, err := engine.FromSnapshot(snap)
	var snapErr *engine.SnapshotError
	assert.Assert(t, errors.As(err, &snapErr), "got %v", err)
	assert.Equal(t, snapErr.Record, 1)
	var dup *dberrors.DuplicatePrimaryKeyError
	assert.Assert(t, errors.As(err, &dup))
}

func TestDirtyTracking(t *testing.T) {
	db := testutil.CreatePeopleDatabase(t)
	assert.Assert(t, db.Dirty())

	snap, version := db.VersionedSnapshot()
	testutil.AssertRecordCount(t, len(snap.Records), 5, "snapshot")

	testutil.AssertNoError(t, db.Update(data.Integer(1), data.Record{"name": data.Text("Anne")}), "update")
	db.MarkSaved(version)
	assert.Assert(t, db.Dirty(), "mutation after snapshot must keep database dirty")

	db.MarkSaved(db.Version())
	assert.Assert(t, !db.Dirty())

	_ = db.Insert(data.Record{"id": data.Integer(1)})
	assert.Assert(t, !db.Dirty(), "failed insert must not dirty the database")
}
