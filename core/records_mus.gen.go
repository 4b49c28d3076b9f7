// Code generated by musgen-go. DO NOT EDIT.

package core

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

var (
	slicehgunMP3K3WBm8r9dcKsz7wΞΞ = ord.NewSliceSer[float32](varint.Float32)
	slicexTp35WYjl8X5qpΣl60TiowΞΞ = ord.NewSliceSer[string](ord.String)
)

var IDMUS = iDMUS{}

type iDMUS struct{}

func (s iDMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s iDMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	tmp, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	v = ID(tmp)
	return
}

func (s iDMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

func (s iDMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

var SourceMUS = sourceMUS{}

type sourceMUS struct{}

func (s sourceMUS) Marshal(v Source, bs []byte) (n int) {
	return ord.String.Marshal(string(v), bs)
}

func (s sourceMUS) Unmarshal(bs []byte) (v Source, n int, err error) {
	tmp, n, err := ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v = Source(tmp)
	return
}

func (s sourceMUS) Size(v Source) (size int) {
	return ord.String.Size(string(v))
}

func (s sourceMUS) Skip(bs []byte) (n int, err error) {
	return ord.String.Skip(bs)
}

var KindMUS = kindMUS{}

type kindMUS struct{}

func (s kindMUS) Marshal(v Kind, bs []byte) (n int) {
	return ord.String.Marshal(string(v), bs)
}

func (s kindMUS) Unmarshal(bs []byte) (v Kind, n int, err error) {
	tmp, n, err := ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v = Kind(tmp)
	return
}

func (s kindMUS) Size(v Kind) (size int) {
	return ord.String.Size(string(v))
}

func (s kindMUS) Skip(bs []byte) (n int, err error) {
	return ord.String.Skip(bs)
}

var IdentityKindMUS = identityKindMUS{}

type identityKindMUS struct{}

func (s identityKindMUS) Marshal(v IdentityKind, bs []byte) (n int) {
	return ord.String.Marshal(string(v), bs)
}

func (s identityKindMUS) Unmarshal(bs []byte) (v IdentityKind, n int, err error) {
	tmp, n, err := ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v = IdentityKind(tmp)
	return
}

func (s identityKindMUS) Size(v IdentityKind) (size int) {
	return ord.String.Size(string(v))
}

func (s identityKindMUS) Skip(bs []byte) (n int, err error) {
	return ord.String.Skip(bs)
}

var ResolutionPathMUS = resolutionPathMUS{}

type resolutionPathMUS struct{}

func (s resolutionPathMUS) Marshal(v ResolutionPath, bs []byte) (n int) {
	return ord.String.Marshal(string(v), bs)
}

func (s resolutionPathMUS) Unmarshal(bs []byte) (v ResolutionPath, n int, err error) {
	tmp, n, err := ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v = ResolutionPath(tmp)
	return
}

func (s resolutionPathMUS) Size(v ResolutionPath) (size int) {
	return ord.String.Size(string(v))
}

func (s resolutionPathMUS) Skip(bs []byte) (n int, err error) {
	return ord.String.Skip(bs)
}

var CheckpointStatusMUS = checkpointStatusMUS{}

type checkpointStatusMUS struct{}

func (s checkpointStatusMUS) Marshal(v CheckpointStatus, bs []byte) (n int) {
	return ord.String.Marshal(string(v), bs)
}

func (s checkpointStatusMUS) Unmarshal(bs []byte) (v CheckpointStatus, n int, err error) {
	tmp, n, err := ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v = CheckpointStatus(tmp)
	return
}

func (s checkpointStatusMUS) Size(v CheckpointStatus) (size int) {
	return ord.String.Size(string(v))
}

func (s checkpointStatusMUS) Skip(bs []byte) (n int, err error) {
	return ord.String.Skip(bs)
}

var IdentityMUS = identityMUS{}

type identityMUS struct{}

func (s identityMUS) Marshal(v Identity, bs []byte) (n int) {
	n = IdentityKindMUS.Marshal(v.Kind, bs)
	n += SourceMUS.Marshal(v.Source, bs[n:])
	n += ord.String.Marshal(v.RawID, bs[n:])
	n += ord.String.Marshal(v.ResolvedKey, bs[n:])
	n += ResolutionPathMUS.Marshal(v.Path, bs[n:])
	return n + raw.TimeUnixMicro.Marshal(v.ResolvedAt, bs[n:])
}

func (s identityMUS) Unmarshal(bs []byte) (v Identity, n int, err error) {
	v.Kind, n, err = IdentityKindMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Source, n1, err = SourceMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.RawID, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ResolvedKey, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Path, n1, err = ResolutionPathMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ResolvedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	return
}

func (s identityMUS) Size(v Identity) (size int) {
	size = IdentityKindMUS.Size(v.Kind)
	size += SourceMUS.Size(v.Source)
	size += ord.String.Size(v.RawID)
	size += ord.String.Size(v.ResolvedKey)
	size += ResolutionPathMUS.Size(v.Path)
	return size + raw.TimeUnixMicro.Size(v.ResolvedAt)
}

func (s identityMUS) Skip(bs []byte) (n int, err error) {
	n, err = IdentityKindMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = SourceMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ResolutionPathMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	return
}

var CheckpointMUS = checkpointMUS{}

type checkpointMUS struct{}

func (s checkpointMUS) Marshal(v Checkpoint, bs []byte) (n int) {
	n = SourceMUS.Marshal(v.Source, bs)
	n += ord.String.Marshal(v.BatchID, bs[n:])
	n += raw.TimeUnixMicro.Marshal(v.StartDate, bs[n:])
	n += raw.TimeUnixMicro.Marshal(v.EndDate, bs[n:])
	n += CheckpointStatusMUS.Marshal(v.Status, bs[n:])
	n += varint.Int.Marshal(v.TotalItems, bs[n:])
	n += varint.Int.Marshal(v.ProcessedItems, bs[n:])
	n += varint.Int.Marshal(v.IngestedItems, bs[n:])
	n += ord.String.Marshal(v.ErrorMessage, bs[n:])
	n += raw.TimeUnixMicro.Marshal(v.StartedAt, bs[n:])
	n += raw.TimeUnixMicro.Marshal(v.CompletedAt, bs[n:])
	return n + raw.TimeUnixMicro.Marshal(v.UpdatedAt, bs[n:])
}

func (s checkpointMUS) Unmarshal(bs []byte) (v Checkpoint, n int, err error) {
	v.Source, n, err = SourceMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.BatchID, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.StartDate, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.EndDate, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Status, n1, err = CheckpointStatusMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.TotalItems, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ProcessedItems, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.IngestedItems, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ErrorMessage, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.StartedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.CompletedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	return
}

func (s checkpointMUS) Size(v Checkpoint) (size int) {
	size = SourceMUS.Size(v.Source)
	size += ord.String.Size(v.BatchID)
	size += raw.TimeUnixMicro.Size(v.StartDate)
	size += raw.TimeUnixMicro.Size(v.EndDate)
	size += CheckpointStatusMUS.Size(v.Status)
	size += varint.Int.Size(v.TotalItems)
	size += varint.Int.Size(v.ProcessedItems)
	size += varint.Int.Size(v.IngestedItems)
	size += ord.String.Size(v.ErrorMessage)
	size += raw.TimeUnixMicro.Size(v.StartedAt)
	size += raw.TimeUnixMicro.Size(v.CompletedAt)
	return size + raw.TimeUnixMicro.Size(v.UpdatedAt)
}

func (s checkpointMUS) Skip(bs []byte) (n int, err error) {
	n, err = SourceMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = CheckpointStatusMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	return
}

var SyncStatusMUS = syncStatusMUS{}

type syncStatusMUS struct{}

func (s syncStatusMUS) Marshal(v SyncStatus, bs []byte) (n int) {
	n = SourceMUS.Marshal(v.Source, bs)
	n += raw.TimeUnixMicro.Marshal(v.LastSyncAt, bs[n:])
	return n + raw.TimeUnixMicro.Marshal(v.UpdatedAt, bs[n:])
}

func (s syncStatusMUS) Unmarshal(bs []byte) (v SyncStatus, n int, err error) {
	v.Source, n, err = SourceMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.LastSyncAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	return
}

func (s syncStatusMUS) Size(v SyncStatus) (size int) {
	size = SourceMUS.Size(v.Source)
	size += raw.TimeUnixMicro.Size(v.LastSyncAt)
	return size + raw.TimeUnixMicro.Size(v.UpdatedAt)
}

func (s syncStatusMUS) Skip(bs []byte) (n int, err error) {
	n, err = SourceMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	return
}

var DocumentMetadataMUS = documentMetadataMUS{}

type documentMetadataMUS struct{}

func (s documentMetadataMUS) Marshal(v DocumentMetadata, bs []byte) (n int) {
	n = ord.String.Marshal(v.NaturalKey, bs)
	n += ord.String.Marshal(v.Project, bs[n:])
	n += raw.TimeUnixMicro.Marshal(v.Timestamp, bs[n:])
	n += slicexTp35WYjl8X5qpΣl60TiowΞΞ.Marshal(v.Participants, bs[n:])
	n += slicexTp35WYjl8X5qpΣl60TiowΞΞ.Marshal(v.AccessList, bs[n:])
	n += ord.Bool.Marshal(v.Public, bs[n:])
	return n + slicexTp35WYjl8X5qpΣl60TiowΞΞ.Marshal(v.Labels, bs[n:])
}

func (s documentMetadataMUS) Unmarshal(bs []byte) (v DocumentMetadata, n int, err error) {
	v.NaturalKey, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Project, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Timestamp, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Participants, n1, err = slicexTp35WYjl8X5qpΣl60TiowΞΞ.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.AccessList, n1, err = slicexTp35WYjl8X5qpΣl60TiowΞΞ.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Public, n1, err = ord.Bool.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Labels, n1, err = slicexTp35WYjl8X5qpΣl60TiowΞΞ.Unmarshal(bs[n:])
	n += n1
	return
}

func (s documentMetadataMUS) Size(v DocumentMetadata) (size int) {
	size = ord.String.Size(v.NaturalKey)
	size += ord.String.Size(v.Project)
	size += raw.TimeUnixMicro.Size(v.Timestamp)
	size += slicexTp35WYjl8X5qpΣl60TiowΞΞ.Size(v.Participants)
	size += slicexTp35WYjl8X5qpΣl60TiowΞΞ.Size(v.AccessList)
	size += ord.Bool.Size(v.Public)
	return size + slicexTp35WYjl8X5qpΣl60TiowΞΞ.Size(v.Labels)
}

func (s documentMetadataMUS) Skip(bs []byte) (n int, err error) {
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = slicexTp35WYjl8X5qpΣl60TiowΞΞ.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = slicexTp35WYjl8X5qpΣl60TiowΞΞ.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.Bool.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = slicexTp35WYjl8X5qpΣl60TiowΞΞ.Skip(bs[n:])
	n += n1
	return
}

var DocumentMUS = documentMUS{}

type documentMUS struct{}

func (s documentMUS) Marshal(v Document, bs []byte) (n int) {
	n = ord.String.Marshal(v.ID, bs)
	n += SourceMUS.Marshal(v.Source, bs[n:])
	n += KindMUS.Marshal(v.Kind, bs[n:])
	n += ord.String.Marshal(v.Title, bs[n:])
	n += ord.String.Marshal(v.Content, bs[n:])
	n += slicehgunMP3K3WBm8r9dcKsz7wΞΞ.Marshal(v.Embedding, bs[n:])
	return n + DocumentMetadataMUS.Marshal(v.Metadata, bs[n:])
}

func (s documentMUS) Unmarshal(bs []byte) (v Document, n int, err error) {
	v.ID, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Source, n1, err = SourceMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Kind, n1, err = KindMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Title, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Content, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Embedding, n1, err = slicehgunMP3K3WBm8r9dcKsz7wΞΞ.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Metadata, n1, err = DocumentMetadataMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (s documentMUS) Size(v Document) (size int) {
	size = ord.String.Size(v.ID)
	size += SourceMUS.Size(v.Source)
	size += KindMUS.Size(v.Kind)
	size += ord.String.Size(v.Title)
	size += ord.String.Size(v.Content)
	size += slicehgunMP3K3WBm8r9dcKsz7wΞΞ.Size(v.Embedding)
	return size + DocumentMetadataMUS.Size(v.Metadata)
}

func (s documentMUS) Skip(bs []byte) (n int, err error) {
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = SourceMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = KindMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = slicehgunMP3K3WBm8r9dcKsz7wΞΞ.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = DocumentMetadataMUS.Skip(bs[n:])
	n += n1
	return
}
