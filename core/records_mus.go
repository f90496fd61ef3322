package core

import (
	"errors"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// ErrNegativeLength is returned when an encoded slice length is negative.
var ErrNegativeLength = errors.New("negative length")

// Serializers for every stored record. Timestamps are encoded as Unix
// microseconds; the zero time is encoded as 0.
var (
	IDMUS                = idMUS{}
	SourceDescriptorMUS  = sourceDescriptorMUS{}
	ContentSectionMUS    = contentSectionMUS{}
	ExtractedDocumentMUS = extractedDocumentMUS{}
	GlossaryTermMUS      = glossaryTermMUS{}
	FeatureRecordMUS     = featureRecordMUS{}
	ChatTurnMUS          = chatTurnMUS{}
	IngestionTaskMUS     = ingestionTaskMUS{}
)

type encoder struct {
	bs []byte
	n  int
}

func (e *encoder) uint64(v uint64) { e.n += varint.Uint64.Marshal(v, e.bs[e.n:]) }
func (e *encoder) int(v int) { e.n += varint.Int.Marshal(v, e.bs[e.n:]) }
func (e *encoder) string(v string) { e.n += ord.String.Marshal(v, e.bs[e.n:]) }

func (e *encoder) time(v time.Time) {
	e.n += varint.Int64.Marshal(timeToMicro(v), e.bs[e.n:])
}

func (e *encoder) vector(v []float32) {
	e.int(len(v))
	for _, f := range v {
		e.n += raw.Float32.Marshal(f, e.bs[e.n:])
	}
}

type decoder struct {
	bs  []byte
	n   int
	err error
}

func (d *decoder) uint64() (v uint64) {
	if d.err != nil {
		return
	}
	var n int
	v, n, d.err = varint.Uint64.Unmarshal(d.bs[d.n:])
	d.n += n
	return
}

func (d *decoder) int() (v int) {
	if d.err != nil {
		return
	}
	var n int
	v, n, d.err = varint.Int.Unmarshal(d.bs[d.n:])
	d.n += n
	return
}

func (d *decoder) string() (v string) {
	if d.err != nil {
		return
	}
	var n int
	v, n, d.err = ord.String.Unmarshal(d.bs[d.n:])
	d.n += n
	return
}

func (d *decoder) time() time.Time {
	if d.err != nil {
		return time.Time{}
	}
	v, n, err := varint.Int64.Unmarshal(d.bs[d.n:])
	d.n += n
	d.err = err
	return microToTime(v)
}

func (d *decoder) length() int {
	l := d.int()
	if d.err == nil && l < 0 {
		d.err = ErrNegativeLength
	}
	return l
}

func (d *decoder) vector() []float32 {
	l := d.length()
	if d.err != nil || l == 0 {
		return nil
	}
	v := make([]float32, l)
	for i := range v {
		f, n, err := raw.Float32.Unmarshal(d.bs[d.n:])
		d.n += n
		if err != nil {
			d.err = err
			return nil
		}
		v[i] = f
	}
	return v
}

func timeToMicro(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMicro()
}

func microToTime(v int64) time.Time {
	if v == 0 {
		return time.Time{}
	}
	return time.UnixMicro(v).UTC()
}

func sizeTime(t time.Time) int { return varint.Int64.Size(timeToMicro(t)) }
func sizeString(s string) int { return ord.String.Size(s) }
func sizeID(id ID) int { return varint.Uint64.Size(uint64(id)) }
func sizeVector(v []float32) int {
	size := varint.Int.Size(len(v))
	for _, f := range v {
		size += raw.Float32.Size(f)
	}
	return size
}

type idMUS struct{}

func (idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	u, n, err := varint.Uint64.Unmarshal(bs)
	return ID(u), n, err
}

func (idMUS) Size(v ID) int { return sizeID(v) }

type sourceDescriptorMUS struct{}

func (sourceDescriptorMUS) Marshal(v SourceDescriptor, bs []byte) (n int) {
	e := encoder{bs: bs}
	e.uint64(uint64(v.Id))
	e.string(v.Name)
	e.string(v.URL)
	e.string(string(v.Strategy))
	e.time(v.AddedAt)
	return e.n
}

func (sourceDescriptorMUS) Unmarshal(bs []byte) (v SourceDescriptor, n int, err error) {
	d := decoder{bs: bs}
	v.Id = ID(d.uint64())
	v.Name = d.string()
	v.URL = d.string()
	v.Strategy = Strategy(d.string())
	v.AddedAt = d.time()
	return v, d.n, d.err
}

func (sourceDescriptorMUS) Size(v SourceDescriptor) int {
	return sizeID(v.Id) + sizeString(v.Name) + sizeString(v.URL) +
		sizeString(string(v.Strategy)) + sizeTime(v.AddedAt)
}

type contentSectionMUS struct{}

func (contentSectionMUS) Marshal(v ContentSection, bs []byte) (n int) {
	e := encoder{bs: bs}
	e.string(v.Title)
	e.string(v.Content)
	e.vector(v.Vector)
	return e.n
}

func (contentSectionMUS) Unmarshal(bs []byte) (v ContentSection, n int, err error) {
	d := decoder{bs: bs}
	v.Title = d.string()
	v.Content = d.string()
	v.Vector = d.vector()
	return v, d.n, d.err
}

func (contentSectionMUS) Size(v ContentSection) int {
	return sizeString(v.Title) + sizeString(v.Content) + sizeVector(v.Vector)
}

type extractedDocumentMUS struct{}

func (extractedDocumentMUS) Marshal(v ExtractedDocument, bs []byte) (n int) {
	e := encoder{bs: bs}
	e.uint64(uint64(v.Id))
	e.uint64(uint64(v.SourceId))
	e.string(v.SourceName)
	e.string(v.SourceURL)
	e.string(v.FullText)
	e.int(len(v.Sections))
	for _, s := range v.Sections {
		e.n += ContentSectionMUS.Marshal(s, e.bs[e.n:])
	}
	e.time(v.ScrapedAt)
	return e.n
}

func (extractedDocumentMUS) Unmarshal(bs []byte) (v ExtractedDocument, n int, err error) {
	d := decoder{bs: bs}
	v.Id = ID(d.uint64())
	v.SourceId = ID(d.uint64())
	v.SourceName = d.string()
	v.SourceURL = d.string()
	v.FullText = d.string()
	if l := d.length(); d.err == nil && l > 0 {
		v.Sections = make([]ContentSection, l)
		for i := range v.Sections {
			s, n, err := ContentSectionMUS.Unmarshal(d.bs[d.n:])
			d.n += n
			if err != nil {
				return v, d.n, err
			}
			v.Sections[i] = s
		}
	}
	v.ScrapedAt = d.time()
	return v, d.n, d.err
}

func (extractedDocumentMUS) Size(v ExtractedDocument) int {
	size := sizeID(v.Id) + sizeID(v.SourceId) + sizeString(v.SourceName) +
		sizeString(v.SourceURL) + sizeString(v.FullText) + varint.Int.Size(len(v.Sections))
	for _, s := range v.Sections {
		size += ContentSectionMUS.Size(s)
	}
	return size + sizeTime(v.ScrapedAt)
}

type glossaryTermMUS struct{}

func (glossaryTermMUS) Marshal(v GlossaryTerm, bs []byte) (n int) {
	e := encoder{bs: bs}
	e.uint64(uint64(v.Id))
	e.string(v.Term)
	e.string(v.Explanation)
	e.vector(v.Vector)
	e.time(v.InsertedAt)
	e.time(v.UpdatedAt)
	return e.n
}

func (glossaryTermMUS) Unmarshal(bs []byte) (v GlossaryTerm, n int, err error) {
	d := decoder{bs: bs}
	v.Id = ID(d.uint64())
	v.Term = d.string()
	v.Explanation = d.string()
	v.Vector = d.vector()
	v.InsertedAt = d.time()
	v.UpdatedAt = d.time()
	return v, d.n, d.err
}

func (glossaryTermMUS) Size(v GlossaryTerm) int {
	return sizeID(v.Id) + sizeString(v.Term) + sizeString(v.Explanation) +
		sizeVector(v.Vector) + sizeTime(v.InsertedAt) + sizeTime(v.UpdatedAt)
}

type featureRecordMUS struct{}

func (featureRecordMUS) Marshal(v FeatureRecord, bs []byte) (n int) {
	e := encoder{bs: bs}
	e.uint64(uint64(v.Id))
	e.string(v.Name)
	e.string(v.Description)
	e.vector(v.Vector)
	e.time(v.InsertedAt)
	e.time(v.UpdatedAt)
	return e.n
}

func (featureRecordMUS) Unmarshal(bs []byte) (v FeatureRecord, n int, err error) {
	d := decoder{bs: bs}
	v.Id = ID(d.uint64())
	v.Name = d.string()
	v.Description = d.string()
	v.Vector = d.vector()
	v.InsertedAt = d.time()
	v.UpdatedAt = d.time()
	return v, d.n, d.err
}

func (featureRecordMUS) Size(v FeatureRecord) int {
	return sizeID(v.Id) + sizeString(v.Name) + sizeString(v.Description) +
		sizeVector(v.Vector) + sizeTime(v.InsertedAt) + sizeTime(v.UpdatedAt)
}

type chatTurnMUS struct{}

func (chatTurnMUS) Marshal(v ChatTurn, bs []byte) (n int) {
	e := encoder{bs: bs}
	e.uint64(uint64(v.Id))
	e.int(int(v.Speaker))
	e.string(v.Text)
	e.time(v.Timestamp)
	return e.n
}

func (chatTurnMUS) Unmarshal(bs []byte) (v ChatTurn, n int, err error) {
	d := decoder{bs: bs}
	v.Id = ID(d.uint64())
	v.Speaker = SpeakerType(d.int())
	v.Text = d.string()
	v.Timestamp = d.time()
	return v, d.n, d.err
}

func (chatTurnMUS) Size(v ChatTurn) int {
	return sizeID(v.Id) + varint.Int.Size(int(v.Speaker)) + sizeString(v.Text) + sizeTime(v.Timestamp)
}

type ingestionTaskMUS struct{}

func (ingestionTaskMUS) Marshal(v IngestionTask, bs []byte) (n int) {
	e := encoder{bs: bs}
	e.string(v.Id)
	e.string(v.SourceURL)
	e.string(string(v.Status))
	e.string(v.Message)
	e.uint64(uint64(v.DocumentId))
	e.int(v.SectionsCount)
	e.string(v.SegmenterStatus)
	e.time(v.CreatedAt)
	e.time(v.UpdatedAt)
	return e.n
}

func (ingestionTaskMUS) Unmarshal(bs []byte) (v IngestionTask, n int, err error) {
	d := decoder{bs: bs}
	v.Id = d.string()
	v.SourceURL = d.string()
	v.Status = TaskStatus(d.string())
	v.Message = d.string()
	v.DocumentId = ID(d.uint64())
	v.SectionsCount = d.int()
	v.SegmenterStatus = d.string()
	v.CreatedAt = d.time()
	v.UpdatedAt = d.time()
	return v, d.n, d.err
}

func (ingestionTaskMUS) Size(v IngestionTask) int {
	return sizeString(v.Id) + sizeString(v.SourceURL) + sizeString(string(v.Status)) +
		sizeString(v.Message) + sizeID(v.DocumentId) + varint.Int.Size(v.SectionsCount) +
		sizeString(v.SegmenterStatus) + sizeTime(v.CreatedAt) + sizeTime(v.UpdatedAt)
}
