package copybook_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/gostdlib/base/context"
	"github.com/kylelemons/godebug/pretty"
	"golang.org/x/text/encoding/charmap"

	"github.com/bearlytools/copybook"
	"github.com/bearlytools/copybook/recordjson"
)

const tranBook = `
       01 TRAN-REC.
          05 SEGMENT-ID     PIC X(1).
          05 REC-NAME       PIC X(8).
          05 REC-AMT        PIC S9(3)V99 COMP-3.
`

// ebc encodes ASCII text as EBCDIC cp037 bytes.
func ebc(t *testing.T, s string) []byte {
	t.Helper()
	b, err := charmap.CodePage037.NewEncoder().Bytes([]byte(s))
	if err != nil {
		t.Fatalf("ebc(%q): %s", s, err)
	}
	return b
}

// tranRec builds one 12 byte payload: segment code, padded name, packed amount.
func tranRec(t *testing.T, code, name string, amt []byte) []byte {
	t.Helper()
	var b []byte
	b = append(b, ebc(t, code)...)
	b = append(b, ebc(t, name+strings.Repeat(" ", 8-len(name)))...)
	b = append(b, amt...)
	return b
}

func rdw(payload []byte) []byte {
	return append([]byte{0, 0, 0, byte(len(payload))}, payload...)
}

func segCfg() copybook.SegmentConfig {
	return copybook.SegmentConfig{
		DiscriminatorField: "SEGMENT-ID",
		Levels: []copybook.SegmentLevel{
			{Name: "CUSTOMER", Values: []string{"C"}},
			{Name: "PURCHASE", Values: []string{"P"}},
		},
		GenerateIDs: true,
	}
}

// TestReaderHierarchy runs the whole pipeline: a variable-length EBCDIC
// stream wrapped in file-level control blocks, multiplexing customer and
// purchase records, assembled into customer roots with generated ids.
func TestReaderHierarchy(t *testing.T) {
	ctx := context.Background()

	cb, err := copybook.Parse(ctx, tranBook)
	if err != nil {
		t.Fatalf("TestReaderHierarchy: parsing copybook: %s", err)
	}
	if got := cb.RecordSize(); got != 12 {
		t.Fatalf("TestReaderHierarchy: got record size %d, want 12", got)
	}

	var stream []byte
	stream = append(stream, bytes.Repeat([]byte{0xEE}, 100)...) // file header block
	stream = append(stream, rdw(tranRec(t, "C", "ALICE", []byte{0x10, 0x00, 0x0C}))...)
	stream = append(stream, rdw(tranRec(t, "P", "HAT", []byte{0x00, 0x99, 0x9C}))...)
	stream = append(stream, rdw(tranRec(t, "P", "COAT", []byte{0x00, 0x50, 0x0D}))...)
	stream = append(stream, rdw(tranRec(t, "C", "BOB", []byte{0x00, 0x10, 0x0C}))...)
	stream = append(stream, bytes.Repeat([]byte{0xEE}, 120)...) // file trailer block

	r, err := cb.NewReader(ctx, bytes.NewReader(stream), int64(len(stream)), "tran.dat",
		copybook.WithVariableLength(0, false),
		copybook.WithFileTrim(100, 120),
		copybook.WithSegments(segCfg()),
	)
	if err != nil {
		t.Fatalf("TestReaderHierarchy: opening reader: %s", err)
	}

	var roots []*copybook.Record
	for {
		rec, err := r.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("TestReaderHierarchy: Next: %s", err)
		}
		roots = append(roots, rec)
	}
	if len(roots) != 2 {
		t.Fatalf("TestReaderHierarchy: got %d roots, want 2", len(roots))
	}

	got, err := recordjson.MarshalRecord(roots[0])
	if err != nil {
		t.Fatalf("TestReaderHierarchy: marshaling root: %s", err)
	}
	want := `{"RECORD-ID":1,"SEGMENT-ID":"C","REC-NAME":"ALICE","REC-AMT":100,` +
		`"PURCHASE":[` +
		`{"RECORD-ID":1,"SEGMENT-ID":"P","REC-NAME":"HAT","REC-AMT":9.99},` +
		`{"RECORD-ID":1,"SEGMENT-ID":"P","REC-NAME":"COAT","REC-AMT":-5}` +
		`]}`
	if strings.TrimSpace(string(got)) != want {
		t.Fatalf("TestReaderHierarchy: got json:\n%s\nwant:\n%s", got, want)
	}

	if id, _ := roots[1].Get(copybook.IDField); id.Int != 2 {
		t.Errorf("TestReaderHierarchy: got second root id %s, want 2", id)
	}
}

func TestReaderFixedLength(t *testing.T) {
	ctx := context.Background()

	cb, err := copybook.Parse(ctx, tranBook)
	if err != nil {
		t.Fatalf("TestReaderFixedLength: parsing copybook: %s", err)
	}

	var stream []byte
	stream = append(stream, tranRec(t, "C", "ALICE", []byte{0x10, 0x00, 0x0C})...)
	stream = append(stream, tranRec(t, "P", "HAT", []byte{0x00, 0x99, 0x9C})...)

	r, err := cb.NewReader(ctx, bytes.NewReader(stream), int64(len(stream)), "tran.dat",
		copybook.WithFixedLength(0))
	if err != nil {
		t.Fatalf("TestReaderFixedLength: opening reader: %s", err)
	}

	var names []string
	for {
		rec, err := r.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("TestReaderFixedLength: Next: %s", err)
		}
		v, _ := rec.Get("REC-NAME")
		names = append(names, v.Text)
	}
	if diff := pretty.Compare([]string{"ALICE", "HAT"}, names); diff != "" {
		t.Fatalf("TestReaderFixedLength: -want/+got:\n%s", diff)
	}
}

func TestReaderNonDivisible(t *testing.T) {
	ctx := context.Background()

	cb, err := copybook.Parse(ctx, tranBook)
	if err != nil {
		t.Fatalf("TestReaderNonDivisible: parsing copybook: %s", err)
	}

	stream := make([]byte, 13) // record size is 12
	_, err = cb.NewReader(ctx, bytes.NewReader(stream), int64(len(stream)), "tran.dat",
		copybook.WithFixedLength(0))
	fe, ok := err.(*copybook.FramingError)
	if !ok {
		t.Fatalf("TestReaderNonDivisible: got %T, want *FramingError", err)
	}
	if fe.Actual != 13 || fe.Expected != 12 {
		t.Errorf("TestReaderNonDivisible: got expected/actual %d/%d, want 12/13", fe.Expected, fe.Actual)
	}
}

func TestLayoutReport(t *testing.T) {
	ctx := context.Background()

	cb, err := copybook.Parse(ctx, tranBook)
	if err != nil {
		t.Fatalf("TestLayoutReport: parsing copybook: %s", err)
	}
	report := cb.LayoutReport()
	if cb.LayoutReport() != report {
		t.Fatalf("TestLayoutReport: output is not deterministic")
	}
	for _, s := range []string{"TRAN-REC.SEGMENT-ID", "TRAN-REC.REC-AMT", "RECORD SIZE: 12"} {
		if !strings.Contains(report, s) {
			t.Errorf("TestLayoutReport: output is missing %q:\n%s", s, report)
		}
	}
}

func TestSchemaJSON(t *testing.T) {
	ctx := context.Background()

	cb, err := copybook.Parse(ctx, tranBook)
	if err != nil {
		t.Fatalf("TestSchemaJSON: parsing copybook: %s", err)
	}

	schema := cb.Schema(copybook.CollapseRoot, segCfg())
	if schema[0].Name != copybook.IDField {
		t.Fatalf("TestSchemaJSON: got first field %q, want %q", schema[0].Name, copybook.IDField)
	}
	last := schema[len(schema)-1]
	if last.Name != "PURCHASE" || last.Elem == nil || !last.Elem.SelfReferential {
		t.Fatalf("TestSchemaJSON: got last field %+v, want a self referential PURCHASE array", last)
	}

	got, err := recordjson.MarshalSchema(schema)
	if err != nil {
		t.Fatalf("TestSchemaJSON: marshaling schema: %s", err)
	}
	for _, s := range []string{`"RECORD-ID"`, `"SEGMENT-ID"`, `"self_referential":true`, `"kind":"decimal"`} {
		if !strings.Contains(string(got), s) {
			t.Errorf("TestSchemaJSON: json is missing %s:\n%s", s, got)
		}
	}
}
