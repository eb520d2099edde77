package jobs

// Job and cron constants, centralized the way the teacher's own jobs
// package keeps them.
const (
	JobMailWorker     = "mail.worker.drain"
	JobDeletionAdvance = "deletion.advance_and_purge"
)

// CronDeletionAdvance runs the stage1->stage2 advance and stage2 purge
// sweep a few times a day; it is not latency sensitive.
const CronDeletionAdvance = "15 */6 * * *"
