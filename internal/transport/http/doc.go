// Package http exposes the KPI pipeline to the UI collaborator over a
// small JSON API: workbook upload (resolve/enrich/classify, memoized by
// content fingerprint), filtered metric series with statistics, the
// interactive chart document, and the multi-page PDF export.
package http
