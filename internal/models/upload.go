package models

// EmptyDocumentJSON отдаётся, если в запросе не было части с документом.
const EmptyDocumentJSON = "{}"
