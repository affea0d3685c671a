package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gdap/pkg/logger"
)

const testAuth = "Bearer test-token"

func TestGetRelationship(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, testAuth, r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("client-request-id"))
		assert.Equal(t, relationshipsPath+"/rel-1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Relationship{ID: "rel-1", Status: StatusActive, Etag: `W/"7"`})
	}))
	defer srv.Close()

	c := New(logger.Nop(), srv.URL)
	rel, err := c.GetRelationship(context.Background(), testAuth, "rel-1")
	require.NoError(t, err)
	assert.Equal(t, StatusActive, rel.Status)
	assert.Equal(t, `W/"7"`, rel.Etag)
}

func TestListFollowsNextLink(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case relationshipsPath:
			fmt.Fprintf(w, `{"value":[{"id":"a"},{"id":"b"}],"@odata.nextLink":"%s%s/page2"}`, srv.URL, relationshipsPath)
		case relationshipsPath + "/page2":
			fmt.Fprint(w, `{"value":[{"id":"c"}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New(logger.Nop(), srv.URL)
	rels, err := c.ListRelationships(context.Background(), testAuth)
	require.NoError(t, err)
	require.Len(t, rels, 3)
	assert.Equal(t, "c", rels[2].ID)
}

func TestConflictMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"error":{"code":"Request_Conflict","message":"etag mismatch","innerError":{"request-id":"req-9"}}}`)
	}))
	defer srv.Close()

	c := New(logger.Nop(), srv.URL)
	err := c.DeleteRelationship(context.Background(), testAuth, "rel-1", `W/"stale"`)
	require.Error(t, err)
	assert.True(t, IsConflict(err))

	var ce *ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "Request_Conflict", ce.Code)
	assert.Equal(t, "etag mismatch", ce.Message)
	assert.Equal(t, "req-9", ce.RequestID)
}

func TestPreconditionFailedIsConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPreconditionFailed)
	}))
	defer srv.Close()

	c := New(logger.Nop(), srv.URL)
	_, err := c.UpdateAssignment(context.Background(), testAuth, "rel-1", "as-1", `W/"old"`, AccessDetails{})
	assert.True(t, IsConflict(err))
}

func TestRequestErrorKeepsRemoteDiagnostics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":{"code":"Authorization_RequestDenied","message":"Insufficient privileges"}}`)
	}))
	defer srv.Close()

	c := New(logger.Nop(), srv.URL)
	_, err := c.GetRelationship(context.Background(), testAuth, "rel-1")
	require.Error(t, err)
	assert.False(t, IsConflict(err))

	var re *RequestError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusForbidden, re.StatusCode)
	assert.Contains(t, re.Error(), "Authorization_RequestDenied")
	assert.Contains(t, re.Error(), "Insufficient privileges")
}

func TestIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(logger.Nop(), srv.URL)
	_, err := c.GetRelationship(context.Background(), testAuth, "gone")
	assert.True(t, IsNotFound(err))
}

func TestDeleteSendsIfMatch(t *testing.T) {
	var gotIfMatch string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIfMatch = r.Header.Get("If-Match")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(logger.Nop(), srv.URL)
	require.NoError(t, c.DeleteRelationship(context.Background(), testAuth, "rel-1", `W/"42"`))
	assert.Equal(t, `W/"42"`, gotIfMatch)
}

func TestSubmitRelationshipRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, relationshipsPath+"/rel-1/requests", r.URL.Path)
		assert.Equal(t, `W/"1"`, r.Header.Get("If-Match"))
		var req RelationshipRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, ActionLockForApproval, req.Action)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(RelationshipRequest{ID: "req-1", Action: req.Action, Status: "succeeded"})
	}))
	defer srv.Close()

	c := New(logger.Nop(), srv.URL)
	out, err := c.SubmitRelationshipRequest(context.Background(), testAuth, "rel-1",
		RelationshipRequest{Action: ActionLockForApproval}, `W/"1"`)
	require.NoError(t, err)
	assert.Equal(t, "req-1", out.ID)
}

func TestFindGroupByName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/groups", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		filter := r.URL.Query().Get("$filter")
		if filter == "displayName eq 'Helpdesk Ops'" {
			fmt.Fprint(w, `{"value":[{"id":"g-1","displayName":"Helpdesk Ops"}]}`)
			return
		}
		fmt.Fprint(w, `{"value":[]}`)
	}))
	defer srv.Close()

	c := New(logger.Nop(), srv.URL)
	g, found, err := c.FindGroupByName(context.Background(), testAuth, "Helpdesk Ops")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "g-1", g.ID)

	_, found, err = c.FindGroupByName(context.Background(), testAuth, "Nobody")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFindServicePrincipalEscapesQuotes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "appId eq 'app''1'", r.URL.Query().Get("$filter"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"value":[]}`)
	}))
	defer srv.Close()

	c := New(logger.Nop(), srv.URL)
	_, found, err := c.FindServicePrincipalByAppID(context.Background(), testAuth, "app'1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRoleIDsHelpers(t *testing.T) {
	rel := Relationship{AccessDetails: AccessDetails{UnifiedRoles: []UnifiedRole{
		{RoleDefinitionID: "r1"}, {RoleDefinitionID: "r2"},
	}}}
	assert.Equal(t, []string{"r1", "r2"}, rel.RoleIDs())

	a := AccessAssignment{
		AccessContainer: AccessContainer{AccessContainerID: "g-1"},
		AccessDetails:   AccessDetails{UnifiedRoles: []UnifiedRole{{RoleDefinitionID: "r1"}}},
	}
	assert.Equal(t, "g-1", a.SecurityGroupID())
	assert.Equal(t, []string{"r1"}, a.RoleIDs())
}
