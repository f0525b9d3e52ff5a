// Package enumerator discovers the work of a sync run and feeds it to the queue.
//
// Download enumerates remote objects under a prefix; Upload walks a local
// tree. Both push first-attempt tasks and always mark the queue's producer as
// done when they return, whatever the outcome. A failure preparing one item is
// logged, counted and skipped; a failure of the listing itself ends Run.
package enumerator
