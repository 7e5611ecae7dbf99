package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/securedoc/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentGet(t *testing.T) {
	env := newTestEnv(t)
	s := seedSharedDoc(t, env)
	docs := env.documents()

	got, err := docs.Get(context.Background(), s.doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", got.Filename)

	_, err = docs.Get(context.Background(), "missing")
	require.ErrorIs(t, err, common.ErrDocumentNotFound)
}

func TestListAccessibleTo_OwnEnvelopeOnly(t *testing.T) {
	env := newTestEnv(t)
	s := seedSharedDoc(t, env)
	docs := env.documents()

	got, err := docs.ListAccessibleTo(context.Background(), s.bob.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "envB", got[0].Grant.EncryptedKeyEnvelope)
	assert.Equal(t, "owner@example.org", got[0].OwnerEmail)
	assert.Equal(t, "OWNERKEY", got[0].OwnerPublicKey)

	got, err = docs.ListAccessibleTo(context.Background(), s.carol.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDeleteDocument_NotOwner(t *testing.T) {
	env := newTestEnv(t)
	s := seedSharedDoc(t, env)

	env.expectTx(false)
	err := env.documents().Delete(context.Background(), s.doc.ID, s.bob.ID)
	require.ErrorIs(t, err, common.ErrNotOwner)
	env.done(t)

	assert.Contains(t, env.st.docs, s.doc.ID)
	assert.Equal(t, 2, env.st.grantCount(s.doc.ID))
}

func TestDeleteDocument_RemovesGrants(t *testing.T) {
	env := newTestEnv(t)
	s := seedSharedDoc(t, env)

	env.expectTx(true)
	require.NoError(t, env.documents().Delete(context.Background(), s.doc.ID, s.owner.ID))
	env.done(t)

	assert.NotContains(t, env.st.docs, s.doc.ID)
	assert.Zero(t, env.st.grantCount(s.doc.ID))
	assert.Equal(t, 1, env.st.calls["grants.DeleteByDocument"])

	// the blob is left behind
	_, ok := env.store.Get(s.doc.StorageLocator)
	assert.True(t, ok)
}

func TestDeleteDocument_NotFound(t *testing.T) {
	env := newTestEnv(t)

	env.expectTx(false)
	err := env.documents().Delete(context.Background(), "missing", "u")
	require.ErrorIs(t, err, common.ErrDocumentNotFound)
	env.done(t)
}
