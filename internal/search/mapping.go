package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for contact documents.
//
// Names use the simple analyzer (no stemming, people's names shouldn't be
// stemmed), notes get English stemming, and tags/emails stay as exact
// keywords.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = simple.Name

	docMapping := bleve.NewDocumentMapping()

	// Name - primary search target.
	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Analyzer = simple.Name
	nameFieldMapping.Store = true
	nameFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("name", nameFieldMapping)

	nicknameFieldMapping := bleve.NewTextFieldMapping()
	nicknameFieldMapping.Analyzer = simple.Name
	nicknameFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("nickname", nicknameFieldMapping)

	companyFieldMapping := bleve.NewTextFieldMapping()
	companyFieldMapping.Analyzer = simple.Name
	companyFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("company", companyFieldMapping)

	jobTitleFieldMapping := bleve.NewTextFieldMapping()
	jobTitleFieldMapping.Analyzer = en.AnalyzerName
	jobTitleFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("job_title", jobTitleFieldMapping)

	// Notes - searchable but not stored (can be large).
	notesFieldMapping := bleve.NewTextFieldMapping()
	notesFieldMapping.Analyzer = en.AnalyzerName
	notesFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("notes", notesFieldMapping)

	// --- Keyword fields (exact match) ---

	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	ownerFieldMapping := bleve.NewTextFieldMapping()
	ownerFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("owner_id", ownerFieldMapping)

	emailFieldMapping := bleve.NewTextFieldMapping()
	emailFieldMapping.Analyzer = keyword.Name
	emailFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("email", emailFieldMapping)

	// Keyword analyzer keeps compound slugs intact (e.g., "college-friends").
	tagsFieldMapping := bleve.NewTextFieldMapping()
	tagsFieldMapping.Analyzer = keyword.Name
	tagsFieldMapping.Store = true
	tagsFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("tags", tagsFieldMapping)

	// --- Numeric fields ---

	createdAtFieldMapping := bleve.NewNumericFieldMapping()
	createdAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("created_at", createdAtFieldMapping)

	updatedAtFieldMapping := bleve.NewNumericFieldMapping()
	updatedAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("updated_at", updatedAtFieldMapping)

	indexMapping.DefaultMapping = docMapping

	return indexMapping
}
