package extractor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moamenhredeen/oasgen"
)

var petstoreSpec = []byte(`{
  "openapi": "3.0.0",
  "info": {"title": "Petstore", "version": "1.0.0"},
  "paths": {
    "/pets": {
      "get": {
        "operationId": "listPets",
        "summary": "List all pets",
        "responses": {
          "200": {
            "description": "A paged array of pets",
            "content": {"application/json": {"schema": {"type": "array", "items": {"type": "object"}}}}
          }
        }
      },
      "post": {
        "operationId": "createPet",
        "summary": "Create a pet",
        "requestBody": {
          "content": {"application/json": {"schema": {"type": "object"}}}
        },
        "responses": {
          "201": {"description": "Created"}
        }
      }
    },
    "/pets/{petId}": {
      "get": {
        "operationId": "showPetById",
        "summary": "Info for a specific pet",
        "parameters": [
          {"name": "petId", "in": "path", "required": true, "schema": {"type": "integer"}}
        ],
        "responses": {
          "200": {
            "description": "A pet",
            "content": {
              "application/xml": {"schema": {"type": "object"}},
              "application/json": {"schema": {"type": "object"}}
            }
          },
          "default": {"description": "unexpected error"}
        }
      },
      "delete": {
        "summary": "No operationId, must be skipped",
        "responses": {"204": {"description": "Deleted"}}
      }
    }
  }
}`)

func TestExtractOrderAndFields(t *testing.T) {
	records, err := New(nil).Extract(petstoreSpec)
	require.NoError(t, err)
	require.Len(t, records, 3)

	// Paths in insertion order, methods in fixed get/post/put/delete/patch
	// order within a path. The delete without operationId is dropped.
	assert.Equal(t, "listPets", records[0].Op.OperationID)
	assert.Equal(t, "createPet", records[1].Op.OperationID)
	assert.Equal(t, "showPetById", records[2].Op.OperationID)

	list := records[0].Op
	assert.Equal(t, oasgen.MethodGet, list.Method)
	assert.Equal(t, "/pets", list.PathTemplate)
	assert.Empty(t, list.PathParams)
	assert.False(t, list.HasRequestBody)
	assert.Equal(t, "List all pets", list.Summary)

	create := records[1].Op
	assert.Equal(t, oasgen.MethodPost, create.Method)
	assert.True(t, create.HasRequestBody)

	show := records[2].Op
	assert.Equal(t, oasgen.MethodGet, show.Method)
	assert.Equal(t, "/pets/{petId}", show.PathTemplate)
	assert.Equal(t, []string{"petId"}, show.PathParams)
	assert.False(t, show.HasRequestBody)
}

func TestExtractParamTypes(t *testing.T) {
	records, err := New(nil).Extract(petstoreSpec)
	require.NoError(t, err)

	show := records[2]
	assert.Equal(t, "int64", show.ParamTypes["petId"])
}

func TestExtractResponseMeta(t *testing.T) {
	records, err := New(nil).Extract(petstoreSpec)
	require.NoError(t, err)

	list := records[0]
	require.Len(t, list.Responses, 1)
	assert.Equal(t, 200, list.Responses[0].Status)
	assert.Equal(t, "application/json", list.Responses[0].ContentType)

	// JSON preferred over other content types; "default" responses carry no
	// status code and are dropped.
	show := records[2]
	require.Len(t, show.Responses, 1)
	assert.Equal(t, 200, show.Responses[0].Status)
	assert.Equal(t, "application/json", show.Responses[0].ContentType)

	create := records[1]
	require.Len(t, create.Responses, 1)
	assert.Equal(t, 201, create.Responses[0].Status)
	assert.Equal(t, "", create.Responses[0].ContentType)
}

func TestExtractNoPaths(t *testing.T) {
	records, err := New(nil).Extract([]byte(`{"openapi":"3.0.0","info":{"title":"t","version":"1"},"paths":{}}`))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestExtractMalformedSpec(t *testing.T) {
	_, err := New(nil).Extract([]byte(`{not json`))
	require.Error(t, err)

	var parseErr *ParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestExtractPathItemParameterFallback(t *testing.T) {
	spec := []byte(`{
  "openapi": "3.0.0",
  "info": {"title": "t", "version": "1"},
  "paths": {
    "/users/{user_id}": {
      "parameters": [
        {"name": "user_id", "in": "path", "required": true, "schema": {"type": "string"}}
      ],
      "patch": {
        "operationId": "updateUser",
        "requestBody": {"content": {"application/json": {"schema": {"type": "object"}}}},
        "responses": {"200": {"description": "ok"}}
      }
    }
  }
}`)

	records, err := New(nil).Extract(spec)
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, oasgen.MethodPatch, records[0].Op.Method)
	assert.Equal(t, []string{"user_id"}, records[0].Op.PathParams)
	assert.Equal(t, "string", records[0].ParamTypes["user_id"])
	assert.True(t, records[0].Op.HasRequestBody)
}
