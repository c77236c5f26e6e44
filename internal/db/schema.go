package db

import "fmt"

// schemaSQL returns the schema initialization SQL. The embedding dimension
// is baked into the HNSW index definitions and must match the embedder.
func schemaSQL(embeddingDim int) string {
	return fmt.Sprintf(`
    -- ==========================================================================
    -- CONVERSATION TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS conversation SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS client_id ON conversation TYPE string;
    DEFINE FIELD IF NOT EXISTS product_id ON conversation TYPE string;
    DEFINE FIELD IF NOT EXISTS user_id ON conversation TYPE option<string>;
    -- Messages are validated in Go at the store boundary; FLEXIBLE keeps the
    -- nested content parts intact.
    DEFINE FIELD IF NOT EXISTS messages ON conversation TYPE array<object> FLEXIBLE;
    DEFINE FIELD IF NOT EXISTS created_at ON conversation TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS updated_at ON conversation TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS conversation_tenant ON conversation FIELDS client_id, product_id;

    -- ==========================================================================
    -- DOC_CHUNK TABLE (vector index payloads)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS doc_chunk SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS client_id ON doc_chunk TYPE string;
    DEFINE FIELD IF NOT EXISTS product_id ON doc_chunk TYPE string;
    DEFINE FIELD IF NOT EXISTS version ON doc_chunk TYPE string;
    DEFINE FIELD IF NOT EXISTS position ON doc_chunk TYPE int;
    DEFINE FIELD IF NOT EXISTS content ON doc_chunk TYPE string;
    DEFINE FIELD IF NOT EXISTS source_page ON doc_chunk TYPE int;
    DEFINE FIELD IF NOT EXISTS is_table ON doc_chunk TYPE bool DEFAULT false;
    DEFINE FIELD IF NOT EXISTS embedding ON doc_chunk TYPE array<float>;
    DEFINE FIELD IF NOT EXISTS created_at ON doc_chunk TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS doc_chunk_tenant ON doc_chunk FIELDS client_id, product_id, version;
    DEFINE INDEX IF NOT EXISTS doc_chunk_embedding ON doc_chunk FIELDS embedding HNSW DIMENSION %d DIST COSINE TYPE F32;

    -- ==========================================================================
    -- DOC_INDEX TABLE (active index version per tenant+product)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS doc_index SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS client_id ON doc_index TYPE string;
    DEFINE FIELD IF NOT EXISTS product_id ON doc_index TYPE string;
    DEFINE FIELD IF NOT EXISTS active_version ON doc_index TYPE string;
    DEFINE FIELD IF NOT EXISTS chunk_count ON doc_index TYPE int;
    DEFINE FIELD IF NOT EXISTS dimension ON doc_index TYPE int;
    DEFINE FIELD IF NOT EXISTS embed_model ON doc_index TYPE string;
    DEFINE FIELD IF NOT EXISTS updated_at ON doc_index TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS doc_index_tenant ON doc_index FIELDS client_id, product_id UNIQUE;

    -- ==========================================================================
    -- DOCUMENT_RECORD TABLE (chunked-document list per tenant+product)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS document_record SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS client_id ON document_record TYPE string;
    DEFINE FIELD IF NOT EXISTS product_id ON document_record TYPE string;
    DEFINE FIELD IF NOT EXISTS chunks ON document_record TYPE array<object> FLEXIBLE;
    DEFINE FIELD IF NOT EXISTS chunk_count ON document_record TYPE int;
    DEFINE FIELD IF NOT EXISTS updated_at ON document_record TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS document_record_tenant ON document_record FIELDS client_id, product_id UNIQUE;

    -- ==========================================================================
    -- USER_MEMORY TABLE (personalization facts)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS user_memory SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS user_id ON user_memory TYPE string;
    DEFINE FIELD IF NOT EXISTS content ON user_memory TYPE string;
    DEFINE FIELD IF NOT EXISTS embedding ON user_memory TYPE array<float>;
    DEFINE FIELD IF NOT EXISTS created_at ON user_memory TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS user_memory_user ON user_memory FIELDS user_id;
    DEFINE INDEX IF NOT EXISTS user_memory_embedding ON user_memory FIELDS embedding HNSW DIMENSION %d DIST COSINE TYPE F32;
`, embeddingDim, embeddingDim)
}
