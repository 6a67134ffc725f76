// Package queue provides the thread-safe FIFO that holds pending tasks.
//
// A Task is a nullary closure. Callers bind a computation and its
// arguments into a Task before enqueueing it:
//
//	q := queue.New()
//	q.Enqueue(func() { fmt.Println(a * b) })
//
//	if task, ok := q.TryDequeue(); ok {
//	    task()
//	}
//
// # Thread Safety
//
// Every operation takes the queue's internal mutex. Size and IsEmpty
// return a point-in-time snapshot. Ordering across concurrent Enqueue
// calls follows lock acquisition order.
package queue
