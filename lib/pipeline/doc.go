// Package pipeline drives a single scrape.
//
// every source follows the same shape:
// 1. enumerate the entities once (a link list or a <select>), this is the only fatal step.
// 2. for each entity, turn it into one or more requests (GET a detail page, POST a form per band).
// 3. make assertions on the response (status, expected containers).
// 4. transform the response into a record, goquery selectors into column -> value.
// 5. hand the record to the sink, which is also fatal on failure.
//
// the source owns steps 1 through 4, Run owns the loop, the error policy and step 5.
package pipeline
