// Package taskqueue provides an unbounded FIFO work queue with join semantics.
//
// Producers Put tasks without blocking. Workers block in Get until a task is
// available and call Done once they have finished with it. Join blocks until
// every task that was Put has been marked Done.
//
// Example usage:
//
//	q := taskqueue.New[int]()
//	go func() {
//		for {
//			item, err := q.Get(ctx)
//			if err != nil {
//				return
//			}
//			process(item)
//			q.Done()
//		}
//	}()
//	for i := 0; i < 10; i++ {
//		_ = q.Put(i)
//	}
//	_ = q.Join(ctx)
//
// Join only means "drained" once the producer has finished calling Put. A
// Join issued before any task was Put returns immediately.
package taskqueue
