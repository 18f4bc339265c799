// internal/scraper/cleaner.go
package scraper

// Clean deletes undefined values from record and empties out nil media
// entries of media lists. Null list entries are kept. Clean is idempotent.
func Clean(record Record) Record {
	for key, v := range record {
		switch v.Kind() {
		case KindUndefined:
			delete(record, key)
		case KindMedia, KindMediaList:
			items := v.MediaList()
			kept := items[:0]
			for _, item := range items {
				if item != nil {
					kept = append(kept, item)
				}
			}
			if len(kept) == 0 {
				delete(record, key)
				continue
			}
			if v.Kind() == KindMedia {
				record[key] = MediaValue(kept[0])
			} else {
				record[key] = MediaListValue(kept)
			}
		}
	}
	return record
}
