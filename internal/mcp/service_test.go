package mcp

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sanonone/netsearch/pkg/query"
	"github.com/sanonone/netsearch/pkg/results"
	"github.com/sanonone/netsearch/pkg/sharelink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	submitted atomic.Int32
	xrefCalls atomic.Int32
	submitErr error
}

func (f *fakeBackend) Submit(_ context.Context, q query.NetworkSearchQuery) (*results.Payload, error) {
	f.submitted.Add(1)
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	mek := results.Node{Name: "MEK", Namespace: "FPLX", Identifier: "MEK"}
	raf := results.Node{Name: "RAF1", Namespace: "HGNC", Identifier: "9829"}
	erk := results.Node{Name: "ERK", Namespace: "FPLX", Identifier: "ERK"}
	return &results.Payload{
		PathResults: &results.PathResultData{
			Source: &mek,
			Paths: map[int][]results.Path{
				2: {{Nodes: []results.Node{mek, erk}, EdgeData: []results.EdgeData{{Belief: 0.9}}}},
				3: {
					{Nodes: []results.Node{mek, raf, erk}, EdgeData: []results.EdgeData{{Belief: 0.5}, {Belief: 0.7}}},
					{Nodes: []results.Node{mek, raf, erk}, EdgeData: []results.EdgeData{{Belief: 0.4}, {Belief: 0.6}}},
				},
			},
		},
		OntologyResults: &results.OntologyResults{Source: mek, Target: erk, Parents: []results.Node{{Name: "MAPK", Namespace: "FPLX", Identifier: "MAPK"}}},
	}, nil
}

func (f *fakeBackend) Autocomplete(context.Context, string) ([]results.Node, error) { return nil, nil }

func (f *fakeBackend) NodeInGraph(_ context.Context, name string) (*results.Node, error) {
	if name == "MEK" || name == "ERK" {
		return &results.Node{Name: name, Namespace: "FPLX", Identifier: name}, nil
	}
	return nil, nil
}

func (f *fakeBackend) Xrefs(_ context.Context, ns, id string) ([]results.Xref, error) {
	f.xrefCalls.Add(1)
	return []results.Xref{{Namespace: ns, Identifier: id, URL: "https://identifiers.org/" + ns + ":" + id}}, nil
}

var testCodec = sharelink.Codec{BaseURL: "https://network.example.org", HashRouting: true}

func TestEncodeLink(t *testing.T) {
	s := NewService(&fakeBackend{}, testCodec, nil)
	_, out, err := s.EncodeLink(context.Background(), nil, EncodeLinkArgs{Fields: map[string]string{
		query.FieldSource:   "MEK",
		query.FieldWeighted: "belief",
		query.FieldSign:     "0",
	}})
	require.NoError(t, err)
	assert.Equal(t, "source=MEK&weighted=belief", out.Params)
	assert.Equal(t, "https://network.example.org#/?source=MEK&weighted=belief", out.Link)
	assert.Empty(t, out.FieldErrors)
}

func TestEncodeLinkReportsBadValues(t *testing.T) {
	s := NewService(&fakeBackend{}, testCodec, nil)

	_, _, err := s.EncodeLink(context.Background(), nil, EncodeLinkArgs{Fields: map[string]string{"colour": "blue"}})
	assert.Error(t, err)

	_, _, err = s.EncodeLink(context.Background(), nil, EncodeLinkArgs{Fields: map[string]string{query.FieldTwoWay: "yes"}})
	assert.Error(t, err)

	_, out, err := s.EncodeLink(context.Background(), nil, EncodeLinkArgs{Fields: map[string]string{query.FieldKShortest: "0"}})
	require.NoError(t, err)
	assert.Contains(t, out.FieldErrors, query.FieldKShortest)
}

func TestDecodeLink(t *testing.T) {
	s := NewService(&fakeBackend{}, testCodec, nil)
	_, out, err := s.DecodeLink(context.Background(), nil, DecodeLinkArgs{
		Link: "https://network.example.org#/?source=MEK&two_way=maybe&execute=false",
	})
	require.NoError(t, err)
	assert.Equal(t, "MEK", out.Query.Source)
	assert.Contains(t, out.DecodeErrors, query.FieldTwoWay)
	assert.False(t, out.AutoSubmit)
	assert.Equal(t, "https://network.example.org#/?source=MEK", out.Link)
}

func TestSearchSummarizesBuckets(t *testing.T) {
	be := &fakeBackend{}
	s := NewService(be, testCodec, nil)
	_, out, err := s.Search(context.Background(), nil, SearchArgs{Link: "?source=MEK&target=ERK", MaxPaths: 1})
	require.NoError(t, err)
	assert.Equal(t, int32(1), be.submitted.Load())

	require.Len(t, out.Paths, 2)
	assert.Equal(t, 1, out.Paths[0].Count)
	assert.Equal(t, []string{"MEK → ERK"}, out.Paths[0].Paths)
	assert.Equal(t, 2, out.Paths[1].Count)
	assert.Len(t, out.Paths[1].Paths, 1)
	assert.InDelta(t, 0.55, out.Paths[1].MeanBelief, 1e-9)
	assert.Equal(t, []string{"MAPK"}, out.SharedParents)
	assert.False(t, out.Empty)
}

func TestSearchIgnoresExecuteFalse(t *testing.T) {
	be := &fakeBackend{}
	s := NewService(be, testCodec, nil)
	_, _, err := s.Search(context.Background(), nil, SearchArgs{Link: "?source=MEK&execute=false"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), be.submitted.Load())
}

func TestSearchErrors(t *testing.T) {
	be := &fakeBackend{}
	s := NewService(be, testCodec, nil)

	_, _, err := s.Search(context.Background(), nil, SearchArgs{Link: "?source=UNKNOWN"})
	assert.ErrorIs(t, err, query.ErrUnresolvedSource)

	_, _, err = s.Search(context.Background(), nil, SearchArgs{Link: "?source=MEK&fplx_expand=1"})
	assert.Error(t, err)
	assert.Zero(t, be.submitted.Load())

	be.submitErr = errors.New("search service unavailable")
	_, _, err = s.Search(context.Background(), nil, SearchArgs{Link: "?source=MEK"})
	assert.EqualError(t, err, "search service unavailable")
}

func TestLookupXrefsIsCached(t *testing.T) {
	be := &fakeBackend{}
	s := NewService(be, testCodec, nil)
	args := XrefsArgs{Name: "MEK", Namespace: "FPLX", Identifier: "MEK"}

	for range 3 {
		_, out, err := s.LookupXrefs(context.Background(), nil, args)
		require.NoError(t, err)
		assert.Equal(t, "MEK", out.Name)
		require.Len(t, out.Xrefs, 1)
	}
	assert.Equal(t, int32(1), be.xrefCalls.Load())

	_, _, err := s.LookupXrefs(context.Background(), nil, XrefsArgs{Name: "MEK"})
	assert.Error(t, err)
}

func TestServerListsTools(t *testing.T) {
	ctx := context.Background()
	server := NewMCPServer(&fakeBackend{}, testCodec, nil)

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer ss.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "0"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer cs.Close()

	res, err := cs.ListTools(ctx, nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"encode_share_link", "decode_share_link", "network_search", "lookup_xrefs"}, names)
}
