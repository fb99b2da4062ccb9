package access

import (
	"github.com/ryogrid/HeapTxnDB/common"
	"github.com/ryogrid/HeapTxnDB/errors"
	"github.com/ryogrid/HeapTxnDB/types"
	"github.com/sasha-s/go-deadlock"
)

// TxnCompleter flushes or discards the pages of a finishing transaction and
// releases its locks. BufferPool implements it.
type TxnCompleter interface {
	TransactionComplete(tid types.TxnID, commit bool) error
}

/**
 * TransactionManager keeps track of all the transactions running in the system.
 */
type TransactionManager struct {
	completer TxnCompleter
	/** The global transaction latch is used for shutdown. */
	global_txn_latch common.ReaderWriterLatch
	mutex            deadlock.Mutex
	txn_map          map[types.TxnID]*Transaction
}

func NewTransactionManager(completer TxnCompleter) *TransactionManager {
	return &TransactionManager{
		completer:        completer,
		global_txn_latch: common.NewRWLatch(),
		txn_map:          make(map[types.TxnID]*Transaction),
	}
}

func (transaction_manager *TransactionManager) Begin() *Transaction {
	// Acquire the global transaction latch in shared mode.
	transaction_manager.global_txn_latch.RLock()

	txn_ret := NewTransaction(types.NewTxnID())

	transaction_manager.mutex.Lock()
	transaction_manager.txn_map[txn_ret.GetTransactionId()] = txn_ret
	transaction_manager.mutex.Unlock()

	common.ShPrintf(common.COMMIT_ABORT_HANDLE_INFO, "txn %d began\n", txn_ret.GetTransactionId())
	return txn_ret
}

// Commit flushes the pages txn dirtied and releases its locks. A transaction
// which is already aborted can not commit and gets ErrTxnAborted.
func (transaction_manager *TransactionManager) Commit(txn *Transaction) error {
	switch txn.GetState() {
	case ABORTED:
		return errors.Wrapf(errors.ErrTxnAborted, "txn %d can not commit", txn.GetTransactionId())
	case COMMITTED:
		return nil
	}
	txn.SetState(SHRINKING)

	err := transaction_manager.completer.TransactionComplete(txn.GetTransactionId(), true)
	if err != nil {
		// the pages could not be written, so nothing of txn is durable
		txn.SetState(ABORTED)
		transaction_manager.finish(txn)
		return errors.Wrapf(err, "commit of txn %d failed", txn.GetTransactionId())
	}

	txn.SetState(COMMITTED)
	transaction_manager.finish(txn)
	return nil
}

// Abort discards the pages txn dirtied and releases its locks.
func (transaction_manager *TransactionManager) Abort(txn *Transaction) error {
	if st := txn.GetState(); st == ABORTED || st == COMMITTED {
		return nil
	}
	txn.SetState(SHRINKING)

	err := transaction_manager.completer.TransactionComplete(txn.GetTransactionId(), false)
	txn.SetState(ABORTED)
	transaction_manager.finish(txn)
	if err != nil {
		return errors.Wrapf(err, "abort of txn %d failed", txn.GetTransactionId())
	}
	return nil
}

func (transaction_manager *TransactionManager) GetTransaction(txn_id types.TxnID) *Transaction {
	transaction_manager.mutex.Lock()
	defer transaction_manager.mutex.Unlock()
	return transaction_manager.txn_map[txn_id]
}

// BlockAllTransactions waits for every running transaction to finish and
// keeps new ones from starting until ResumeTransactions.
func (transaction_manager *TransactionManager) BlockAllTransactions() {
	transaction_manager.global_txn_latch.WLock()
}

func (transaction_manager *TransactionManager) ResumeTransactions() {
	transaction_manager.global_txn_latch.WUnlock()
}

func (transaction_manager *TransactionManager) finish(txn *Transaction) {
	transaction_manager.mutex.Lock()
	delete(transaction_manager.txn_map, txn.GetTransactionId())
	transaction_manager.mutex.Unlock()

	common.ShPrintf(common.COMMIT_ABORT_HANDLE_INFO, "txn %d finished as %v\n", txn.GetTransactionId(), txn.GetState())
	// Release the global transaction latch.
	transaction_manager.global_txn_latch.RUnlock()
}
